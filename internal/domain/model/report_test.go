package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialsNeverPrinted(t *testing.T) {
	c := Credentials{ID: "22691A0572", Secret: "hunter2"}
	require.True(t, c.Valid())
	for _, s := range []string{fmt.Sprint(c), fmt.Sprintf("%v", c), fmt.Sprintf("%#v", c)} {
		require.NotContains(t, s, "22691A0572")
		require.NotContains(t, s, "hunter2")
	}
	require.False(t, Credentials{ID: "x"}.Valid())
	require.False(t, Credentials{Secret: "x"}.Valid())
}
