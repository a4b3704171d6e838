package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos accept it so reads and writes can join an enclosing transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
