package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityDevice                      // Desk device token required
)

// EndpointSecurityConfig maps named HTTP routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"health":      SecurityPublic,
	"auth.device": SecurityPublic,

	// Mock storage endpoints are addressed by opaque keys handed out in
	// signed responses, mirroring presigned S3 URLs.
	"files.upload":   SecurityPublic,
	"files.download": SecurityPublic,

	"sessions.new":        SecurityDevice,
	"sessions.create":     SecurityDevice,
	"sessions.list":       SecurityDevice,
	"sessions.search":     SecurityDevice,
	"sessions.get":        SecurityDevice,
	"sessions.update":     SecurityDevice,
	"sessions.delete":     SecurityDevice,
	"sessions.return":     SecurityDevice,
	"sessions.status":     SecurityDevice,
	"sessions.close":      SecurityDevice,
	"sessions.photo":      SecurityDevice,
	"photos.url":          SecurityDevice,
	"customers.profile":   SecurityDevice,
	"reconciliation.view": SecurityDevice,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityDevice
}
