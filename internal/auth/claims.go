package auth

// IdentityClaims is the normalized identity asserted by a verified provider
// token. It lives for the duration of a single sign-in call and is never
// persisted.
type IdentityClaims struct {
	Email      string
	GivenName  string
	FamilyName string
	Issuer     string
}
