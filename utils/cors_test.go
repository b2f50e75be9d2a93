package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed bool
	}{
		// Allowed: the companion UI served from localhost
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"https://localhost:8080", true},

		// Allowed: private-range IPs on the home network
		{"http://192.168.1.20", true},
		{"http://192.168.1.20:8080", true},
		{"http://10.0.0.5", true},
		{"http://172.16.0.1", true},
		{"http://172.31.255.255:443", true},
		{"http://127.0.0.1", true},
		{"http://127.0.0.1:5173", true},

		// Allowed: link-local
		{"http://169.254.1.1", true},

		// Allowed: .local hostnames
		{"http://salon.local", true},
		{"http://salon.local:8080", true},

		// Allowed: single-label LAN hostnames
		{"http://cineday:8080", true},

		// Blocked: public domains, including lookalikes of the catalog source
		{"http://example.com", false},
		{"https://evil.com", false},
		{"https://data.cineday.example.org", false},
		{"http://data.cineday.example.org.evil.com", false},

		// Blocked: public IPs
		{"http://8.8.8.8", false},
		{"http://1.1.1.1", false},

		// Blocked: empty/invalid
		{"", false},
		{"pas-une-url", false},
	}

	for _, tt := range tests {
		got := IsAllowedOrigin(tt.origin)
		if got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}
