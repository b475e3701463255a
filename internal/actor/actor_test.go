package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	ctx := WithUserID(context.Background(), "u1")
	id, ok := UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok = UserID(WithUserID(context.Background(), ""))
	assert.False(t, ok, "empty id is not an actor")
}

func TestAsSystem(t *testing.T) {
	assert.False(t, IsSystem(context.Background()))

	ctx := AsSystem(context.Background())
	assert.True(t, IsSystem(ctx))
	_, ok := UserID(ctx)
	assert.False(t, ok, "system context carries no user")
}
