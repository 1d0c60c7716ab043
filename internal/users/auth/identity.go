// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements member authentication for the rankboard API.

It resolves who is making a request from the tokens they present, without any
server-side session store.

# Architecture

  - Identity: a sealed sum type over the two enrollment methods (legacy
    password accounts and federated sign-in).
  - Derivation: every identity derives its own signing secret from credential
    state, so changing a password or the federated link revokes every token
    issued before the change.
  - Authenticator: the two-pass token resolution (untrusted decode, store
    lookup, trusted re-verification) plus password login.
  - Stores: PostgreSQL for members, Redis for login throttling.
*/
package auth

import (
	"fmt"

	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/pkg/pointer"
)

// # Domain Entities

// Kind names the credential variant of an [Identity].
type Kind string

const (
	KindLegacy    Kind = "legacy"
	KindFederated Kind = "federated"
)

// Key derivation labels. Changing either invalidates every issued token.
const (
	legacyKeyLabel    = "rankboard/member-key/legacy/v1"
	federatedKeyLabel = "rankboard/member-key/federated/v1"
)

// Member holds the attributes shared by every identity variant.
type Member struct {
	ID          int32
	DisplayName string
	Permissions sec.Permissions
}

// Identity is an authenticated member.
//
// The set of implementations is closed: only [*LegacyIdentity] and
// [*FederatedIdentity] exist, and each can only be built with its credential
// present. Use a type switch to reach variant-specific data.
type Identity interface {
	sec.Principal

	// Kind reports which credential variant backs this identity.
	Kind() Kind

	// SigningSecret derives the key that this member's tokens are signed with.
	SigningSecret() []byte

	sealed()
}

// LegacyIdentity is a member that signs in with a password.
type LegacyIdentity struct {
	member         Member
	passwordDigest string
}

// FederatedIdentity is a member that signs in through an external identity provider.
type FederatedIdentity struct {
	member     Member
	externalID string
	email      string
}

// NewLegacyIdentity builds a password-backed identity.
//
// It returns [ErrMalformedCredentialState] when digest is empty.
func NewLegacyIdentity(member Member, digest string) (*LegacyIdentity, error) {
	if digest == "" {
		return nil, malformed(member.ID)
	}
	return &LegacyIdentity{member: member, passwordDigest: digest}, nil
}

// NewFederatedIdentity builds an identity linked to an external account.
//
// It returns [ErrMalformedCredentialState] when either value is empty.
func NewFederatedIdentity(member Member, externalID, email string) (*FederatedIdentity, error) {
	if externalID == "" || email == "" {
		return nil, malformed(member.ID)
	}
	return &FederatedIdentity{member: member, externalID: externalID, email: email}, nil
}

/*
IdentityFromRow resolves a store row into the matching identity variant.

Description: A row carrying both an external account id and a verified email is
federated; otherwise it must carry a password digest and is legacy. Empty
strings count as absent.

Parameters:
  - row: Row

Returns:
  - Identity: *FederatedIdentity or *LegacyIdentity
  - error: ErrMalformedCredentialState when neither credential is complete or
    the permissions column does not fit the 16-bit field
*/
func IdentityFromRow(row Row) (Identity, error) {
	permissions, err := sec.ParsePermissions(row.Permissions)
	if err != nil {
		return nil, fmt.Errorf("%w: member %d: %w", ErrMalformedCredentialState, row.ID, err)
	}

	member := Member{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Permissions: permissions,
	}

	if pointer.Present(row.ExternalAccountID) && pointer.Present(row.VerifiedEmail) {
		return NewFederatedIdentity(member, *row.ExternalAccountID, *row.VerifiedEmail)
	}

	return NewLegacyIdentity(member, pointer.Val(row.PasswordDigest))
}

// # Shared Surface

func (identity *LegacyIdentity) ID() int32                    { return identity.member.ID }
func (identity *LegacyIdentity) DisplayName() string          { return identity.member.DisplayName }
func (identity *LegacyIdentity) Permissions() sec.Permissions { return identity.member.Permissions }
func (identity *LegacyIdentity) Kind() Kind                   { return KindLegacy }
func (identity *LegacyIdentity) SigningSecret() []byte        { return DeriveSigningSecret(identity) }
func (identity *LegacyIdentity) sealed()                      {}

// PasswordDigest returns the stored password digest.
func (identity *LegacyIdentity) PasswordDigest() string { return identity.passwordDigest }

// WithPasswordDigest returns a copy of the identity carrying a new digest.
func (identity *LegacyIdentity) WithPasswordDigest(digest string) (*LegacyIdentity, error) {
	return NewLegacyIdentity(identity.member, digest)
}

func (identity *FederatedIdentity) ID() int32                    { return identity.member.ID }
func (identity *FederatedIdentity) DisplayName() string          { return identity.member.DisplayName }
func (identity *FederatedIdentity) Permissions() sec.Permissions { return identity.member.Permissions }
func (identity *FederatedIdentity) Kind() Kind                   { return KindFederated }
func (identity *FederatedIdentity) SigningSecret() []byte        { return DeriveSigningSecret(identity) }
func (identity *FederatedIdentity) sealed()                      {}

// ExternalID returns the identity provider's account identifier.
func (identity *FederatedIdentity) ExternalID() string { return identity.externalID }

// Email returns the verified email linked to the external account.
func (identity *FederatedIdentity) Email() string { return identity.email }

// # Credential Key Derivation

/*
DeriveSigningSecret computes the per-member token signing key.

Description: Legacy identities derive from the password digest, which embeds a
random salt, so equal passwords still give different keys. Federated identities
derive from the external account id together with the linked email, so
unlinking or changing the email revokes outstanding tokens. Nothing public (id,
display name) goes into the key.

Parameters:
  - identity: Identity

Returns:
  - []byte: 32-byte HMAC key
*/
func DeriveSigningSecret(identity Identity) []byte {
	switch identity := identity.(type) {
	case *LegacyIdentity:
		return sec.DeriveKey(legacyKeyLabel, []byte(identity.passwordDigest))
	case *FederatedIdentity:
		return sec.DeriveKey(federatedKeyLabel, []byte(identity.externalID), []byte(identity.email))
	default:
		panic(fmt.Sprintf("auth: identity of type %T has no credential", identity))
	}
}
