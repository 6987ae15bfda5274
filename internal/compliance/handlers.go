package compliance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

//go:generate mockgen -source=handlers.go -destination=mocks/signals_mock.go -package=mocks SystemSignals,AuditSignals

const (
	defaultPassThreshold    = 80
	minKeyBits              = 256
	defaultMinRetentionDays = 30
	defaultMinLabeledRatio  = 0.8
	recentCheckWindow       = 7 * 24 * time.Hour
)

// SystemSignals probes live system state. A probe that cannot observe its
// signal returns an error and the sub-check reports unknown.
type SystemSignals interface {
	EncryptionAtRest(ctx context.Context) (bool, error)
	EncryptionKeyBits(ctx context.Context) (int, error)
	TLSEnabled(ctx context.Context) (bool, error)
	RoleGrants(ctx context.Context) ([]string, error)
	IdentityAuth(ctx context.Context) (bool, error)
	SessionTracking(ctx context.Context) (bool, error)
	ClassificationLevels(ctx context.Context) ([]string, error)
	LabeledRatio(ctx context.Context) (float64, error)
}

// AuditSignals is the read-only view of the audit logger.
type AuditSignals interface {
	Active() bool
	OldestEntry(ctx context.Context) (time.Time, bool, error)
}

// env is what a handler may observe during one run.
type env struct {
	system SystemSignals
	audit  AuditSignals
	now    time.Time
	// lastCheck is the latest history row recorded before this run started.
	lastCheck    time.Time
	hasLastCheck bool
	lastCheckErr error
}

type outcome struct {
	Passed          bool
	Score           int
	Details         map[string]any
	Evidence        []Evidence
	Recommendations []string
}

// handler evaluates one policy type. The set is closed: handlerFor maps
// every known type to its handler and anything else to unknownHandler.
type handler interface {
	evaluate(ctx context.Context, p Policy, e env) outcome
}

func handlerFor(t PolicyType) handler {
	switch t {
	case TypeEncryption:
		return encryptionHandler{}
	case TypeAuditTrail:
		return auditTrailHandler{}
	case TypeAccessControl:
		return accessControlHandler{}
	case TypeRetention:
		return retentionHandler{}
	case TypeDataClassification:
		return classificationHandler{}
	default:
		return unknownHandler{}
	}
}

// tally accumulates sub-check evidence and turns it into an outcome.
type tally struct {
	evidence        []Evidence
	recommendations []string
	passed          int
}

func (t *tally) pass(check, detail string) {
	t.evidence = append(t.evidence, Evidence{Check: check, Status: EvidencePass, Detail: detail})
	t.passed++
}

func (t *tally) fail(check, detail, recommendation string) {
	t.evidence = append(t.evidence, Evidence{Check: check, Status: EvidenceFail, Detail: detail})
	t.recommendations = append(t.recommendations, recommendation)
}

func (t *tally) unknown(check string, err error, recommendation string) {
	t.evidence = append(t.evidence, Evidence{Check: check, Status: EvidenceUnknown, Detail: "signal unavailable: " + err.Error()})
	t.recommendations = append(t.recommendations, recommendation)
}

// flag records a boolean probe as pass, fail or unknown.
func (t *tally) flag(check string, ok bool, err error, passDetail, failDetail, recommendation string) {
	switch {
	case err != nil:
		t.unknown(check, err, recommendation)
	case ok:
		t.pass(check, passDetail)
	default:
		t.fail(check, failDetail, recommendation)
	}
}

func (t *tally) outcome(p Policy) outcome {
	total := len(t.evidence)
	score := 0
	if total > 0 {
		score = int(math.Round(float64(t.passed) / float64(total) * 100))
	}
	threshold := p.Rules.Int("passThreshold", defaultPassThreshold)
	return outcome{
		Passed: score >= threshold,
		Score:  score,
		Details: map[string]any{
			"checks_total":   total,
			"checks_passed":  t.passed,
			"pass_threshold": threshold,
		},
		Evidence:        t.evidence,
		Recommendations: t.recommendations,
	}
}

var (
	errNoSystemSignals = errors.New("no system signal provider configured")
	errNoAuditLogger   = errors.New("no audit logger configured")
)

type encryptionHandler struct{}

func (encryptionHandler) evaluate(ctx context.Context, p Policy, e env) outcome {
	var t tally

	atRest, err := probe(ctx, e.system, SystemSignals.EncryptionAtRest)
	t.flag("encryption_at_rest", atRest, err,
		"at-rest encryption is active",
		"at-rest encryption is not active",
		"Enable at-rest encryption with a configured data key")

	required := max(p.Rules.Int("minKeyLength", minKeyBits), minKeyBits)
	bits, err := probe(ctx, e.system, SystemSignals.EncryptionKeyBits)
	t.flag("key_length", bits >= required, err,
		fmt.Sprintf("key length %d bits meets %d", bits, required),
		fmt.Sprintf("key length %d bits is below %d", bits, required),
		fmt.Sprintf("Use encryption keys of at least %d bits", required))

	if p.Rules.Bool("requireTLS", true) {
		tls, err := probe(ctx, e.system, SystemSignals.TLSEnabled)
		t.flag("tls_in_transit", tls, err,
			"TLS is enabled for data in transit",
			"TLS is disabled for data in transit",
			"Enable TLS for all network transport")
	}
	return t.outcome(p)
}

type auditTrailHandler struct{}

func (auditTrailHandler) evaluate(ctx context.Context, p Policy, e env) outcome {
	var t tally

	active := e.audit != nil && e.audit.Active()
	if active {
		t.pass("audit_logger_active", "audit logger is active")
	} else {
		t.fail("audit_logger_active", "audit logger is inactive",
			"Initialize and enable the audit logger")
	}

	minDays := p.Rules.Int("minRetentionDays", defaultMinRetentionDays)
	switch {
	case e.audit == nil:
		t.fail("audit_retention", "no audit logger to read history from",
			fmt.Sprintf("Retain audit history for at least %d days", minDays))
	default:
		oldest, ok, err := e.audit.OldestEntry(ctx)
		switch {
		case err != nil:
			t.unknown("audit_retention", err, "Verify the audit store is reachable")
		case !ok:
			t.fail("audit_retention", "audit store holds no entries",
				fmt.Sprintf("Retain audit history for at least %d days", minDays))
		default:
			age := int(e.now.Sub(oldest).Hours() / 24)
			t.flag("audit_retention", age >= minDays, nil,
				fmt.Sprintf("oldest audit entry is %d days old", age),
				fmt.Sprintf("oldest audit entry is %d days old, below %d", age, minDays),
				fmt.Sprintf("Retain audit history for at least %d days", minDays))
		}
	}

	switch {
	case e.lastCheckErr != nil:
		t.unknown("recent_check", e.lastCheckErr, "Verify the compliance store is reachable")
	case e.hasLastCheck && e.now.Sub(e.lastCheck) <= recentCheckWindow:
		t.pass("recent_check", "a compliance check ran within the last 7 days")
	default:
		t.fail("recent_check", "no compliance check within the last 7 days",
			"Schedule compliance checks at least weekly")
	}
	return t.outcome(p)
}

type accessControlHandler struct{}

func (accessControlHandler) evaluate(ctx context.Context, p Policy, e env) outcome {
	var t tally

	grants, grantsErr := probe(ctx, e.system, SystemSignals.RoleGrants)
	t.flag("role_based_grants", len(grants) > 0, grantsErr,
		fmt.Sprintf("%d role grants configured", len(grants)),
		"no role-based grants configured",
		"Define role-based access grants")

	identity, err := probe(ctx, e.system, SystemSignals.IdentityAuth)
	t.flag("identity_authentication", identity, err,
		"identity-based authentication is enforced",
		"identity-based authentication is not enforced",
		"Require identity-based authentication")

	sessions, err := probe(ctx, e.system, SystemSignals.SessionTracking)
	t.flag("session_handling", sessions, err,
		"active sessions are tracked",
		"active sessions are not tracked",
		"Enable session tracking and expiry")

	wildcard := slices.ContainsFunc(grants, isWildcardGrant)
	t.flag("no_wildcard_grants", !wildcard, grantsErr,
		"no unrestricted wildcard grants",
		"an unrestricted wildcard grant is configured",
		"Replace wildcard grants with explicit permissions")
	return t.outcome(p)
}

func isWildcardGrant(g string) bool {
	g = strings.TrimSpace(g)
	return g == "*" || strings.HasSuffix(g, ":*") || strings.Contains(g, ":*:")
}

type retentionHandler struct{}

func (retentionHandler) evaluate(ctx context.Context, p Policy, e env) outcome {
	var t tally

	maxAge := p.Rules.Int("maxAgeDays", 0)
	if maxAge > 0 {
		t.pass("max_age_configured", fmt.Sprintf("maximum age is %d days", maxAge))
	} else {
		t.fail("max_age_configured", "no maximum data age configured",
			"Set rules.maxAgeDays for this policy")
	}

	switch {
	case maxAge <= 0:
		t.fail("no_expired_data", "cannot evaluate data age without a maximum",
			"Set rules.maxAgeDays for this policy")
	case e.audit == nil:
		t.unknown("no_expired_data", errNoAuditLogger,
			"Attach the audit logger so data age can be verified")
	default:
		oldest, ok, err := e.audit.OldestEntry(ctx)
		switch {
		case err != nil:
			t.unknown("no_expired_data", err, "Verify the audit store is reachable")
		case !ok:
			t.pass("no_expired_data", "no stored data to age out")
		default:
			age := int(e.now.Sub(oldest).Hours() / 24)
			t.flag("no_expired_data", age <= maxAge, nil,
				fmt.Sprintf("oldest data is %d days old", age),
				fmt.Sprintf("data older than %d days is retained (%d days)", maxAge, age),
				"Run the retention sweep to remove expired data")
		}
	}
	return t.outcome(p)
}

type classificationHandler struct{}

func (classificationHandler) evaluate(ctx context.Context, p Policy, e env) outcome {
	var t tally

	levels := p.Rules.Strings("levels")
	var err error
	if len(levels) == 0 {
		levels, err = probe(ctx, e.system, SystemSignals.ClassificationLevels)
	}
	t.flag("classification_schema", len(levels) > 0, err,
		fmt.Sprintf("classification levels defined: %s", strings.Join(levels, ", ")),
		"no classification schema defined",
		"Define data classification levels")

	encrypted, err := probe(ctx, e.system, SystemSignals.EncryptionAtRest)
	t.flag("sensitive_data_encrypted", encrypted, err,
		"sensitive data is stored encrypted",
		"sensitive data is stored unencrypted",
		"Encrypt data classified as sensitive")

	minRatio := p.Rules.Float("minLabeledRatio", defaultMinLabeledRatio)
	ratio, err := probe(ctx, e.system, SystemSignals.LabeledRatio)
	t.flag("labeled_ratio", ratio >= minRatio, err,
		fmt.Sprintf("%.0f%% of data is labeled", ratio*100),
		fmt.Sprintf("%.0f%% of data is labeled, below %.0f%%", ratio*100, minRatio*100),
		"Label personal-data stores with a classification level")
	return t.outcome(p)
}

// unknownHandler fails closed for a type no handler understands.
type unknownHandler struct{}

func (unknownHandler) evaluate(_ context.Context, p Policy, _ env) outcome {
	return outcome{
		Passed:  false,
		Score:   0,
		Details: map[string]any{"error": fmt.Sprintf("no handler for policy type %q", p.Type)},
		Evidence: []Evidence{{
			Check:  "handler",
			Status: EvidenceFail,
			Detail: fmt.Sprintf("policy type %q is not supported", p.Type),
		}},
		Recommendations: []string{
			fmt.Sprintf("Fix the configuration of policy %q: type %q is not supported", p.Name, p.Type),
		},
	}
}

// probe calls fn on s, reporting a missing provider as an unobservable signal.
func probe[T any](ctx context.Context, s SystemSignals, fn func(SystemSignals, context.Context) (T, error)) (T, error) {
	if s == nil {
		var zero T
		return zero, errNoSystemSignals
	}
	return fn(s, ctx)
}
