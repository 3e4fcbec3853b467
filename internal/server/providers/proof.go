package providers

import "github.com/dmitrijs2005/launchserver/internal/common"

// PasswordProof is one of PlainPassword, TOTPPassword, TwoFactorPassword or
// TokenPassword.
type PasswordProof interface {
	isPasswordProof()
}

type PlainPassword struct {
	Password string
}

type TOTPPassword struct {
	Code string
}

// TwoFactorPassword pairs a plain password with a TOTP code.
type TwoFactorPassword struct {
	First  PasswordProof
	Second PasswordProof
}

// TokenPassword is a pre-issued token. No password strategy accepts it.
type TokenPassword struct {
	Token string
}

func (PlainPassword) isPasswordProof()     {}
func (TOTPPassword) isPasswordProof()      {}
func (TwoFactorPassword) isPasswordProof() {}
func (TokenPassword) isPasswordProof()     {}

// splitProof extracts the password and the optional TOTP code.
func splitProof(p PasswordProof) (password, code string, err error) {
	switch v := p.(type) {
	case PlainPassword:
		return v.Password, "", nil
	case *PlainPassword:
		return v.Password, "", nil
	case TwoFactorPassword:
		return splitTwoFactor(v)
	case *TwoFactorPassword:
		return splitTwoFactor(*v)
	default:
		return "", "", common.ErrUnsupportedProofType
	}
}

func splitTwoFactor(v TwoFactorPassword) (string, string, error) {
	first, ok := v.First.(PlainPassword)
	if !ok {
		return "", "", common.ErrUnsupportedProofType
	}
	switch second := v.Second.(type) {
	case TOTPPassword:
		return first.Password, second.Code, nil
	case nil:
		return first.Password, "", nil
	default:
		return "", "", common.ErrUnsupportedProofType
	}
}
