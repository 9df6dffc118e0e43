package legisnapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

func Test_ClassifyElementID(t *testing.T) {
	tests := []struct {
		id       string
		expected legisnapshot.Kind
	}{
		{"LEGISCTA000006198560", legisnapshot.KindSection},
		{"LEGIARTI000030730068", legisnapshot.KindArticle},
		{"LEGITEXT000006072050", legisnapshot.KindText},
		{"JORFTEXT000000886460", legisnapshot.KindText},
		{"KALICONT000005635384", legisnapshot.KindText},
		{"KALITEXT000005677408", legisnapshot.KindText},
		{"KALIARTI000005849328", legisnapshot.KindArticle},
		{"KALISCTA000005729212", legisnapshot.KindSection},
		{"KALITM1-1", legisnapshot.KindHeader},
		{"KALITM12", legisnapshot.KindHeader},
		{"CNILTEXT000017651794", legisnapshot.KindText},
		{"LEGIXXXX000000000001", legisnapshot.KindUnknown},
		{"LEGI", legisnapshot.KindUnknown},
		{"", legisnapshot.KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.expected, legisnapshot.ClassifyElementID(tc.id))
		})
	}
}

func Test_Kind_CanHaveChildren(t *testing.T) {
	assert.True(t, legisnapshot.KindSection.CanHaveChildren())
	assert.True(t, legisnapshot.KindHeader.CanHaveChildren())
	assert.True(t, legisnapshot.KindText.CanHaveChildren())
	assert.False(t, legisnapshot.KindArticle.CanHaveChildren())
	assert.False(t, legisnapshot.KindUnknown.CanHaveChildren())
}

func Test_Kind_String(t *testing.T) {
	assert.Equal(t, "section", legisnapshot.KindSection.String())
	assert.Equal(t, "article", legisnapshot.KindArticle.String())
	assert.Equal(t, "header", legisnapshot.KindHeader.String())
	assert.Equal(t, "text", legisnapshot.KindText.String())
	assert.Equal(t, "unknown", legisnapshot.Kind(42).String())
}

func Test_GroupIDsByKind_DedupsAndKeepsOrder(t *testing.T) {
	// act
	grouped := legisnapshot.GroupIDsByKind([]string{
		"LEGIARTI000000000002",
		"LEGISCTA000000000001",
		"LEGIARTI000000000001",
		"LEGIARTI000000000002",
		"bogus",
	})

	// assert
	assert.Equal(t, []string{"LEGIARTI000000000002", "LEGIARTI000000000001"}, grouped[legisnapshot.KindArticle])
	assert.Equal(t, []string{"LEGISCTA000000000001"}, grouped[legisnapshot.KindSection])
	assert.Equal(t, []string{"bogus"}, grouped[legisnapshot.KindUnknown])
	assert.NotContains(t, grouped, legisnapshot.KindHeader)
}

func Test_IsContainerID(t *testing.T) {
	assert.True(t, legisnapshot.IsContainerID("KALICONT000005635384"))
	assert.False(t, legisnapshot.IsContainerID("KALITEXT000005677408"))
	assert.False(t, legisnapshot.IsContainerID("KALI"))
}
