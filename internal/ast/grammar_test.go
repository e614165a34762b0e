package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinyql/internal/nodespec"
	"github.com/roach88/tinyql/internal/value"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := value.Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func loadTop(t *testing.T, s string) Node {
	t.Helper()
	n, err := Load(KindTopLevel, mustDecode(t, s))
	require.NoError(t, err, s)
	return n
}

func TestGrammar_BuiltOnce(t *testing.T) {
	assert.Same(t, Grammar(), Grammar())
	assert.True(t, Grammar().Sealed())
}

func TestGrammar_EveryVerbRegistered(t *testing.T) {
	reg := Grammar()
	for _, name := range append(append([]string{}, verbOrder...), topLevelOrder...) {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestLoad_FieldWithComparison(t *testing.T) {
	n := loadTop(t, `{"age": {"$gt": 12}}`)

	field, ok := n.(*Field)
	require.True(t, ok, "got %T", n)
	require.Len(t, field.Entries, 1)
	assert.Equal(t, FieldPath{"age"}, field.Entries[0].Path)

	cmp, ok := field.Entries[0].Verb.(*Compare)
	require.True(t, ok)
	assert.Equal(t, OpGt, cmp.Op)
	assert.Equal(t, json.Number("12"), cmp.Value)
}

func TestLoad_TopLevelRejectsBareVerb(t *testing.T) {
	for _, q := range []string{
		`{"$gt": 12}`,
		`12`,
		`"bob"`,
		`{"$re": "x"}`,
		`{"$exists": true}`,
		`{"$and": [{"$gt": 1}]}`,
		`{"$not": {"$eq": 1}}`,
	} {
		t.Run(q, func(t *testing.T) {
			_, err := Load(KindTopLevel, mustDecode(t, q))
			require.Error(t, err)
			assert.True(t, nodespec.IsMismatch(err))
		})
	}
}

func TestLoad_TopLevelCombinators(t *testing.T) {
	n := loadTop(t, `{"$or": [{"name": "bob"}, {"age": {"$gt": 13}}]}`)
	or, ok := n.(*Or)
	require.True(t, ok)
	require.Len(t, or.Children, 2)

	first := or.Children[0].(*Field)
	eq, ok := first.Entries[0].Verb.(*DefaultEq)
	require.True(t, ok)
	assert.Equal(t, "bob", eq.Value)

	n = loadTop(t, `{"$not": {"$and": []}}`)
	not, ok := n.(*Not)
	require.True(t, ok)
	and, ok := not.Child.(*And)
	require.True(t, ok)
	assert.Empty(t, and.Children)
}

func TestLoad_TopLevelFragment(t *testing.T) {
	n := loadTop(t, `{"$fragment": {"gameover": false}}`)
	frag, ok := n.(*Fragment)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"gameover": false}, frag.Fragment)
}

func TestLoad_EmptyQueryIsEmptyField(t *testing.T) {
	n := loadTop(t, `{}`)
	field, ok := n.(*Field)
	require.True(t, ok)
	assert.Empty(t, field.Entries)
}

func TestLoad_DottedPath(t *testing.T) {
	n := loadTop(t, `{"status.current-stage": {"$exists": true}, "a.b.c": 1}`)
	field := n.(*Field)
	require.Len(t, field.Entries, 2)
	assert.Equal(t, FieldPath{"a", "b", "c"}, field.Entries[0].Path)
	assert.Equal(t, FieldPath{"status", "current-stage"}, field.Entries[1].Path)
	assert.Equal(t, "status.current-stage", field.Entries[1].Path.String())
}

func TestLoad_FieldPathRejection(t *testing.T) {
	for _, key := range []string{"status.$exists", ".foo", "status..foo", "foo.", "1st", "a.2b", "has space", "$eq"} {
		t.Run(key, func(t *testing.T) {
			raw := map[string]any{key: json.Number("1")}
			_, err := Load(KindTopLevel, raw)
			assert.True(t, nodespec.IsMismatch(err))
		})
	}
}

func TestLoad_MultipleVerbKeysRejected(t *testing.T) {
	_, err := Load(KindTopLevel, mustDecode(t, `{"age": {"$gt": 12, "$lt": 20}}`))
	assert.True(t, nodespec.IsMismatch(err))

	n := loadTop(t, `{"age": {"$and": [{"$gt": 12}, {"$lt": 20}]}}`)
	and, ok := n.(*Field).Entries[0].Verb.(*And)
	require.True(t, ok)
	assert.Len(t, and.Children, 2)
}

func TestLoad_DefaultSearch(t *testing.T) {
	n := loadTop(t, `{"name": {"$re": "^b"}}`)
	ds, ok := n.(*Field).Entries[0].Verb.(*DefaultSearch)
	require.True(t, ok)
	assert.Equal(t, "^b", ds.Pattern)
}

func TestLoad_MatchesOperands(t *testing.T) {
	n := loadTop(t, `{"a": {"$matches": "b.*"}, "b": {"$matches": {"$re": "c+"}}, "c": {"$search": {"$re": "d"}}}`)
	entries := n.(*Field).Entries
	assert.Equal(t, "b.*", entries[0].Verb.(*Matches).Pattern)
	assert.Equal(t, "c+", entries[1].Verb.(*Matches).Pattern)
	assert.Equal(t, "d", entries[2].Verb.(*Search).Pattern)
}

func TestLoad_Quantifiers(t *testing.T) {
	n := loadTop(t, `{"bonus": {"$all": ["book", "key"]}}`)
	q := n.(*Field).Entries[0].Verb.(*Quantify)
	assert.Equal(t, QuantAll, q.Quantifier)
	assert.Nil(t, q.Verb)
	assert.Equal(t, []any{"book", "key"}, q.List)

	n = loadTop(t, `{"bonus": {"$any": {"$re": "candela"}}}`)
	q = n.(*Field).Entries[0].Verb.(*Quantify)
	assert.Equal(t, QuantAny, q.Quantifier)
	require.NotNil(t, q.Verb)
	assert.IsType(t, &DefaultSearch{}, q.Verb)

	n = loadTop(t, `{"scores": {"$all": {"$gt": 12}}}`)
	q = n.(*Field).Entries[0].Verb.(*Quantify)
	assert.IsType(t, &Compare{}, q.Verb)

	n = loadTop(t, `{"items": {"$any": {"name": "orb"}}}`)
	q = n.(*Field).Entries[0].Verb.(*Quantify)
	assert.IsType(t, &Field{}, q.Verb)
}

func TestLoad_Length(t *testing.T) {
	n := loadTop(t, `{"bonus": {"$length": 2}}`)
	l := n.(*Field).Entries[0].Verb.(*Length)
	eq, ok := l.Verb.(*DefaultEq)
	require.True(t, ok)
	assert.Equal(t, json.Number("2"), eq.Value)
}

func TestLoad_Types(t *testing.T) {
	n := loadTop(t, `{"x": {"$types": ["string", "number"]}}`)
	types := n.(*Field).Entries[0].Verb.(*Types)
	assert.Equal(t, []value.Kind{value.KindString, value.KindNumber}, types.Kinds)

	_, err := Load(KindTopLevel, mustDecode(t, `{"x": {"$types": ["integer"]}}`))
	assert.True(t, nodespec.IsMismatch(err))

	_, err = Load(KindTopLevel, mustDecode(t, `{"x": {"$types": "string"}}`))
	assert.True(t, nodespec.IsMismatch(err))
}

func TestLoad_EnumKeysValues(t *testing.T) {
	n := loadTop(t, `{"lang": {"$enum": ["jp", "en"]}, "meta": {"$keys": {"$any": ["lang"]}}, "tags": {"$values": {"$all": {"$types": ["string"]}}}}`)
	entries := n.(*Field).Entries
	assert.Equal(t, []any{"jp", "en"}, entries[0].Verb.(*Enum).Values)
	assert.IsType(t, &Keys{}, entries[1].Verb)
	assert.IsType(t, &Values{}, entries[2].Verb)

	_, err := Load(KindTopLevel, mustDecode(t, `{"lang": {"$enum": "jp"}}`))
	assert.True(t, nodespec.IsMismatch(err))
}

func TestLoad_CompareAcceptsAnything(t *testing.T) {
	n := loadTop(t, `{"a": {"$eq": {"x": [1, null]}}, "b": {"$ne": null}}`)
	entries := n.(*Field).Entries
	assert.Equal(t, map[string]any{"x": []any{json.Number("1"), nil}}, entries[0].Verb.(*Compare).Value)
	assert.Nil(t, entries[1].Verb.(*Compare).Value)
}

func TestLoad_NullIsNotDefaultEq(t *testing.T) {
	_, err := Load(KindTopLevel, mustDecode(t, `{"a": null}`))
	assert.True(t, nodespec.IsMismatch(err))
}

func TestLoad_RawIsKept(t *testing.T) {
	raw := mustDecode(t, `{"age": {"$gt": 12}}`)
	n, err := Load(KindTopLevel, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, n.Raw())
	assert.Equal(t, map[string]any{"$gt": json.Number("12")}, n.(*Field).Entries[0].Verb.Raw())
}

func TestParseFieldPath(t *testing.T) {
	p, err := ParseFieldPath("status.current-stage")
	require.NoError(t, err)
	assert.Equal(t, FieldPath{"status", "current-stage"}, p)

	for _, bad := range []string{"", ".a", "a..b", "a.", "$a", "a.$b", "9a", " a"} {
		_, err := ParseFieldPath(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchema_TopLevel(t *testing.T) {
	sch, err := Schema(KindTopLevel)
	require.NoError(t, err)

	assert.Equal(t, KindTopLevel, sch.Root)
	for _, name := range []string{"TopLevel", "TopLevelAnd", "Verb", "Field", "DefaultSearch", "Regex", "Pattern", "Keys"} {
		assert.Contains(t, sch.Defs, name)
	}

	field := sch.Defs["Field"]
	assert.Equal(t, false, field["additionalProperties"])
	assert.Contains(t, field["patternProperties"], FieldKeyPattern)

	assert.Equal(t, "regex", sch.Defs["Pattern"]["format"])
	assert.Equal(t, "#/$defs/Pattern", sch.Defs["Regex"]["properties"].(map[string]any)["$re"].(map[string]any)["$ref"])
}
