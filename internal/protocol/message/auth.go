package message

// AuthToken is the credential map sent in LOGON, or in HELLO before 5.1.
type AuthToken map[string]any

const (
	authScheme      = "scheme"
	authPrincipal   = "principal"
	authCredentials = "credentials"
	authRealm       = "realm"
)

// NoAuth is sent when a HELLO (before 5.1) or LOGON carries no credentials.
func NoAuth() AuthToken {
	return AuthToken{authScheme: "none"}
}

// BasicAuth builds a username/password token. An empty realm is omitted.
func BasicAuth(user, password, realm string) AuthToken {
	tok := AuthToken{
		authScheme:      "basic",
		authPrincipal:   user,
		authCredentials: password,
	}
	if realm != "" {
		tok[authRealm] = realm
	}
	return tok
}

func BearerAuth(token string) AuthToken {
	return AuthToken{authScheme: "bearer", authCredentials: token}
}

// Redacted returns a copy with credentials masked, safe for logs.
func (t AuthToken) Redacted() AuthToken {
	out := make(AuthToken, len(t))
	for k, v := range t {
		if k == authCredentials {
			out[k] = "******"
			continue
		}
		out[k] = v
	}
	return out
}
