package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestNew_RejectsDuplicateColumns(t *testing.T) {
	_, err := New([]string{"a", "b", "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "a"`)
}

func TestNew_RejectsEmptyColumn(t *testing.T) {
	_, err := New([]string{"a", ""})
	require.Error(t, err)
}

func TestValue_Kinds(t *testing.T) {
	assert.True(t, Missing().IsMissing())
	assert.True(t, Value{}.IsMissing())
	assert.Equal(t, MissingText, Missing().String())

	txt := TextValue("hello")
	assert.Equal(t, Text, txt.Kind())
	assert.Equal(t, "hello", txt.String())

	num := NumberValue(-0.1585)
	f, ok := num.Number()
	require.True(t, ok)
	assert.InDelta(t, -0.1585, f, 1e-12)
	assert.Equal(t, "-0.1585", num.String())
	assert.Equal(t, "0", NumberValue(0).String())

	_, ok = txt.Number()
	assert.False(t, ok)

	obj := ObjectValue(stringer("Baker Street"))
	assert.Equal(t, Object, obj.Kind())
	assert.Equal(t, "Baker Street", obj.String())
	assert.NotNil(t, obj.Object())
	assert.Nil(t, txt.Object())

	assert.True(t, ObjectValue(nil).IsMissing())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "object", Object.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestAppendRow_PadsShortRows(t *testing.T) {
	tbl, err := New([]string{"a", "b", "c"})
	require.NoError(t, err)

	require.NoError(t, tbl.AppendRow([]Value{TextValue("1")}))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "1", tbl.Get(0, "a").String())
	assert.True(t, tbl.Get(0, "c").IsMissing())

	err = tbl.AppendRow([]Value{TextValue("1"), TextValue("2"), TextValue("3"), TextValue("4")})
	require.Error(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestSetColumn_AddsAndReplaces(t *testing.T) {
	tbl, err := New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]Value{TextValue("x")}))
	require.NoError(t, tbl.AppendRow([]Value{TextValue("y")}))

	require.NoError(t, tbl.SetColumn("b", []Value{NumberValue(1), NumberValue(2)}))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, 1, tbl.Index("b"))

	require.NoError(t, tbl.SetColumn("a", []Value{TextValue("p"), TextValue("q")}))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, "q", tbl.Get(1, "a").String())

	err = tbl.SetColumn("c", []Value{TextValue("only one")})
	require.Error(t, err)
	assert.False(t, tbl.Has("c"))
}

func TestColumn_Unknown(t *testing.T) {
	tbl, err := New([]string{"a"})
	require.NoError(t, err)

	_, err = tbl.Column("nope")
	require.Error(t, err)
	assert.Equal(t, -1, tbl.Index("nope"))
}

func TestHead_IsIndependentCopy(t *testing.T) {
	tbl, err := New([]string{"a"})
	require.NoError(t, err)
	for _, s := range []string{"1", "2", "3"} {
		require.NoError(t, tbl.AppendRow([]Value{TextValue(s)}))
	}

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	require.NoError(t, head.SetColumn("b", []Value{TextValue("x"), TextValue("y")}))
	assert.False(t, tbl.Has("b"))

	assert.Equal(t, 3, tbl.Head(10).Len())
	assert.Equal(t, 3, tbl.Clone().Len())
}
