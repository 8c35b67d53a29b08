package imodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "vistree/internal/errors"
)

func TestGroupingKeyValidate(t *testing.T) {
	cases := []struct {
		name string
		key  GroupingKey
		ok   bool
	}{
		{"category grouping", GroupingKey{ClassName: "Arch:Wall", ModelID: "m1", CategoryID: "c1"}, true},
		{"parent grouping", GroupingKey{ClassName: "Arch:DoorLeaf", ParentElementID: "e1"}, true},
		{"missing class", GroupingKey{CategoryID: "c1"}, false},
		{"blank class", GroupingKey{ClassName: "  ", CategoryID: "c1"}, false},
		{"missing parent", GroupingKey{ClassName: "Arch:Wall", ModelID: "m1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.key.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidGroupingNode))
		})
	}
}

func TestGroupingKeySerializeIsStable(t *testing.T) {
	a := GroupingKey{ClassName: "Arch:Wall", ModelID: "m1", CategoryID: "c1"}
	b := GroupingKey{ClassName: "Arch:Wall", ModelID: "m1", CategoryID: "c1"}
	c := GroupingKey{ClassName: "Arch:Wall", ModelID: "m2", CategoryID: "c1"}

	assert.Equal(t, a.Serialize(), b.Serialize())
	assert.NotEqual(t, a.Serialize(), c.Serialize())
	assert.Contains(t, a.Serialize(), `"className":"Arch:Wall"`)
}
