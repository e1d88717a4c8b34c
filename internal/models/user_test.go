package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyLevelUpsInclusiveBoundary(t *testing.T) {
	user := User{Level: 1, XP: 1000}
	gained := user.ApplyLevelUps()
	require.Equal(t, 1, gained)
	require.Equal(t, 2, user.Level)
	require.Equal(t, 0, user.XP)
}

func TestApplyLevelUpsCascades(t *testing.T) {
	user := User{Level: 1, XP: 2500}
	gained := user.ApplyLevelUps()
	// 2500 consumes 1000 at level 1 and cannot cover 2000 at level 2.
	require.Equal(t, 1, gained)
	require.Equal(t, 2, user.Level)
	require.Equal(t, 1500, user.XP)

	user.XP += 600
	gained = user.ApplyLevelUps()
	require.Equal(t, 1, gained)
	require.Equal(t, 3, user.Level)
	require.Equal(t, 100, user.XP)
}

func TestApplyLevelUpsBelowThreshold(t *testing.T) {
	user := User{Level: 3, XP: 2999}
	gained := user.ApplyLevelUps()
	require.Zero(t, gained)
	require.Equal(t, 3, user.Level)
	require.Equal(t, 2999, user.XP)
}

func TestXPForNextLevel(t *testing.T) {
	require.Equal(t, 1000, User{Level: 1}.XPForNextLevel())
	require.Equal(t, 5000, User{Level: 5}.XPForNextLevel())
	require.Equal(t, 1000, User{Level: 0}.XPForNextLevel())
}
