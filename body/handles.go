package body

import "github.com/google/uuid"

// BodyHandle is an opaque, stable identifier for a RigidBody owned by a
// World. It stays valid until the body is removed; after removal every
// World operation taking a stale handle reports ErrUnknownHandle.
type BodyHandle uuid.UUID

// ColliderHandle is an opaque identifier for a collider attached to a body.
type ColliderHandle uuid.UUID

// ConstraintHandle is an opaque identifier for a user constraint registered
// with a World.
type ConstraintHandle uuid.UUID

// NewBodyHandle mints a fresh, globally unique BodyHandle.
func NewBodyHandle() BodyHandle { return BodyHandle(uuid.New()) }

// NewColliderHandle mints a fresh ColliderHandle.
func NewColliderHandle() ColliderHandle { return ColliderHandle(uuid.New()) }

// NewConstraintHandle mints a fresh ConstraintHandle.
func NewConstraintHandle() ConstraintHandle { return ConstraintHandle(uuid.New()) }

func (h BodyHandle) String() string       { return uuid.UUID(h).String() }
func (h ColliderHandle) String() string   { return uuid.UUID(h).String() }
func (h ConstraintHandle) String() string { return uuid.UUID(h).String() }
