package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

func TestBuildToolRequest(t *testing.T) {
	req, err := buildToolRequest(tools.NamePlayerWeaponAttack, `{"campaign_id":"camp-1","attacker":"Aria","target":"goblin-1"}`)
	require.NoError(t, err)

	fields := req.GetFields()
	assert.Equal(t, tools.NamePlayerWeaponAttack, fields["tool"].GetStringValue())
	args := fields["arguments"].GetStructValue().GetFields()
	assert.Equal(t, "camp-1", args["campaign_id"].GetStringValue())
	assert.Equal(t, "Aria", args["attacker"].GetStringValue())
}

func TestBuildToolRequest_NoArguments(t *testing.T) {
	req, err := buildToolRequest(tools.NameGetCombatState, "")
	require.NoError(t, err)
	assert.Empty(t, req.GetFields()["arguments"].GetStructValue().GetFields())
}

func TestBuildToolRequest_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		tool    string
		rawArgs string
	}{
		{name: "unknown tool", tool: "cast_fireball"},
		{name: "not json", tool: tools.NameGetCombatState, rawArgs: "camp-1"},
		{name: "json array", tool: tools.NameGetCombatState, rawArgs: `["camp-1"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildToolRequest(tc.tool, tc.rawArgs)
			assert.Error(t, err)
		})
	}
}
