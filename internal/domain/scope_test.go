package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeDocument_NormalizeDropsBlankLines(t *testing.T) {
	d := &ScopeDocument{
		ProjectID: "p1",
		Statement: ScopeStatement{
			EndProductScope: "  new storefront ",
			Deliverables:    []string{"catalog", "  ", " checkout "},
		},
		Documentation: RequirementDocumentation{StakeholderNeeds: []string{""}},
	}
	d.Normalize()

	assert.Equal(t, "new storefront", d.Statement.EndProductScope)
	assert.Equal(t, []string{"catalog", "checkout"}, d.Statement.Deliverables)
	assert.Empty(t, d.Documentation.StakeholderNeeds)
	assert.NoError(t, d.Validate())
}

func TestScopeDocument_RequiresEndProductScope(t *testing.T) {
	d := &ScopeDocument{ProjectID: "p1", Statement: ScopeStatement{EndProductScope: "   "}}
	d.Normalize()
	assert.ErrorIs(t, d.Validate(), ErrValidation)
}

func TestTeam_Validate(t *testing.T) {
	assert.NoError(t, (&Team{Name: "Design", ColorIndex: TeamColors - 1}).Validate())
	assert.ErrorIs(t, (&Team{Name: " "}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Team{Name: "Ops", ColorIndex: TeamColors}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Team{Name: strings.Repeat("x", 101)}).Validate(), ErrValidation)
}
