// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityMember                      // Access token of an existing member required
	SecurityAdmin                       // Access token of an admin required
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityPublic:
		return "public"
	case SecurityMember:
		return "member"
	case SecurityAdmin:
		return "admin"
	}
	return "unknown"
}

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Probes - Public
	"healthz": SecurityPublic,
	"metrics": SecurityPublic,

	// Rotation
	"rotation.status": SecurityMember,
	"rotation.payout": SecurityAdmin,
	"payouts.list":    SecurityMember,

	// Members
	"members.list":       SecurityAdmin,
	"members.create":     SecurityAdmin,
	"members.deactivate": SecurityAdmin,
	"members.summary":    SecurityMember,
	"members.capacity":   SecurityMember,
	"summary.all":        SecurityAdmin,

	// Ledger entries - members read their own rows
	"contributions.list":         SecurityMember,
	"contributions.create":       SecurityAdmin,
	"foundation_payments.list":   SecurityMember,
	"foundation_payments.create": SecurityAdmin,
	"fines.list":                 SecurityMember,
	"fines.create":               SecurityAdmin,

	// Loans
	"loans.eligibility":     SecurityMember,
	"loans.list":            SecurityMember,
	"loans.create":          SecurityMember,
	"loans.get":             SecurityMember,
	"loans.approve":         SecurityAdmin,
	"loans.reject":          SecurityAdmin,
	"loans.issue":           SecurityAdmin,
	"loans.close":           SecurityAdmin,
	"loans.repayments":      SecurityAdmin,
	"loans.repayments.list": SecurityMember,
	"loans.accrue_interest": SecurityAdmin,
	"loans.interest_runs":   SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
