// Package signals reports live system state to the compliance handlers.
// Everything is read from configuration and probed once at construction;
// the data key is never kept after the probe.
package signals

import (
	"context"
	"errors"
	"slices"
	"strings"

	"custodian/internal/dsr"
	"custodian/internal/platform/config"
	pstrings "custodian/pkg/platform/strings"
	"custodian/pkg/secrets"
)

var (
	errNoKey    = errors.New("no encryption key configured")
	errNoTables = errors.New("no personal-data tables configured")
)

// System implements compliance.SystemSignals.
type System struct {
	keyBits  int
	keyErr   error
	tls      bool
	identity bool
	sessions bool
	grants   []string
	levels   []string
	tables   []dsr.Table
}

// New probes sec's encryption key and records the rest of the settings.
// tables are the personal-data tables the DSR handler operates on.
func New(sec config.Security, tables []dsr.Table) *System {
	s := &System{
		tls:      sec.TLSEnabled,
		identity: sec.IdentityAuth,
		sessions: sec.SessionTracking,
		grants:   roleGrants(sec),
		levels:   classificationLevels(sec, tables),
		tables:   slices.Clone(tables),
	}
	if strings.TrimSpace(sec.EncryptionKey) == "" {
		s.keyErr = errNoKey
		return s
	}
	key, err := secrets.ParseKey(sec.EncryptionKey)
	if err != nil {
		s.keyErr = err
		return s
	}
	s.keyBits = len(key) * 8
	s.keyErr = secrets.Probe(key)
	clear(key)
	return s
}

// EncryptionAtRest is true when a data key is configured and usable.
// A missing key is a definite "no", not an unobservable signal.
func (s *System) EncryptionAtRest(context.Context) (bool, error) {
	if errors.Is(s.keyErr, errNoKey) {
		return false, nil
	}
	return s.keyErr == nil, nil
}

func (s *System) EncryptionKeyBits(context.Context) (int, error) {
	return s.keyBits, nil
}

func (s *System) TLSEnabled(context.Context) (bool, error) {
	return s.tls, nil
}

// RoleGrants returns the configured grants in "role:permission" form.
func (s *System) RoleGrants(context.Context) ([]string, error) {
	return slices.Clone(s.grants), nil
}

func (s *System) IdentityAuth(context.Context) (bool, error) {
	return s.identity, nil
}

func (s *System) SessionTracking(context.Context) (bool, error) {
	return s.sessions, nil
}

func (s *System) ClassificationLevels(context.Context) ([]string, error) {
	return slices.Clone(s.levels), nil
}

// LabeledRatio is the share of personal-data tables carrying a classification.
func (s *System) LabeledRatio(context.Context) (float64, error) {
	if len(s.tables) == 0 {
		return 0, errNoTables
	}
	labeled := 0
	for _, t := range s.tables {
		if strings.TrimSpace(t.Classification) != "" {
			labeled++
		}
	}
	return float64(labeled) / float64(len(s.tables)), nil
}

// roleGrants keeps only grants that name a role listed in sec.Roles. When no
// roles are configured every grant is kept.
func roleGrants(sec config.Security) []string {
	grants := pstrings.DedupeAndTrim(sec.Grants)
	out := make([]string, 0, len(grants))
	for _, g := range grants {
		role, _, _ := strings.Cut(g, ":")
		if len(sec.Roles) > 0 && !slices.Contains(sec.Roles, role) && g != "*" {
			continue
		}
		out = append(out, g)
	}
	return out
}

// classificationLevels prefers the configured schema and falls back to the
// distinct labels used by the tables.
func classificationLevels(sec config.Security, tables []dsr.Table) []string {
	if levels := pstrings.DedupeAndTrimLower(sec.ClassificationLevels); len(levels) > 0 {
		return levels
	}
	labels := make([]string, 0, len(tables))
	for _, t := range tables {
		labels = append(labels, t.Classification)
	}
	levels := pstrings.DedupeAndTrimLower(labels)
	slices.Sort(levels)
	return levels
}
