package sanitize

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeScalars(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"true", true, "1"},
		{"false", false, "0"},
		{"int", 3, "3"},
		{"negative int", int64(-42), "-42"},
		{"uint", uint64(math.MaxUint64), "18446744073709551615"},
		{"float", 2.5, "2.5"},
		{"quote", "a'b", `'a\'b'`},
		{"plain string", "hello", "'hello'"},
		{"bytes", []byte("x\ny"), `'x\ny'`},
		{"backslash", `C:\tmp`, `'C:\\tmp'`},
		{"double quote", `say "hi"`, `'say \"hi\"'`},
		{"nul and ctrl-z", "a\x00b\x1a", `'a\0b\Z'`},
		{"time", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "'2024-03-01 12:30:00'"},
		{"struct", struct{ A int }{1}, ""},
		{"map", map[string]int{"a": 1}, ""},
		{"nil pointer", (*int)(nil), ""},
		{"valid null string", sql.NullString{String: "x", Valid: true}, "'x'"},
		{"invalid null string", sql.NullString{}, ""},
		{"nil time pointer", (*time.Time)(nil), ""},
		{"nil null string pointer", (*sql.NullString)(nil), ""},
		{"list", []any{1, "a", true}, "1, 'a', 1"},
		{"nested list", []any{1, []any{2, "b'"}}, `1, 2, 'b\''`},
		{"NaN", math.NaN(), "'NaN'"},
		{"Inf", math.Inf(1), "'+Inf'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(Of(tt.in)))
		})
	}
}

func TestSanitizeUnquoted(t *testing.T) {
	s := New(nil)

	assert.Equal(t, "id INT", s.SanitizeUnquoted(String("id INT")))
	assert.Equal(t, `it\'s`, s.SanitizeUnquoted(String("it's")))
	assert.Equal(t, "7", s.SanitizeUnquoted(Int(7)))
	assert.Equal(t, "a, b", s.SanitizeUnquoted(List(String("a"), String("b"))))
}

func TestQuoteEscaper(t *testing.T) {
	s := New(QuoteEscaper{})

	assert.Equal(t, "'a''b'", s.Sanitize(String("a'b")))
	assert.Equal(t, `'C:\tmp'`, s.Sanitize(String(`C:\tmp`)))
}

func TestEscaperForSQLMode(t *testing.T) {
	assert.IsType(t, BackslashEscaper{}, EscaperForSQLMode("STRICT_TRANS_TABLES,NO_ENGINE_SUBSTITUTION"))
	assert.IsType(t, QuoteEscaper{}, EscaperForSQLMode("STRICT_TRANS_TABLES,NO_BACKSLASH_ESCAPES"))
	assert.IsType(t, QuoteEscaper{}, EscaperForSQLMode("no_backslash_escapes"))
	assert.IsType(t, BackslashEscaper{}, EscaperForSQLMode(""))
}

func TestBuild(t *testing.T) {
	s := New(nil)

	t.Run("replaces every occurrence", func(t *testing.T) {
		got, err := s.Build("SELECT * FROM t WHERE a = :v: OR b = :v:", Bind("v", "x"))
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM t WHERE a = 'x' OR b = 'x'", got)
	})

	t.Run("leaves other text unchanged", func(t *testing.T) {
		got, err := s.Build("SELECT ':v' , :v:, v:", Bind("v", 1))
		require.NoError(t, err)
		assert.Equal(t, "SELECT ':v' , 1, v:", got)
	})

	t.Run("prefix keys do not shadow each other", func(t *testing.T) {
		b := NewBindings().Set("id", 1).Set("id2", 2)
		got, err := s.Build("a = :id: AND b = :id2:", b)
		require.NoError(t, err)
		assert.Equal(t, "a = 1 AND b = 2", got)
	})

	t.Run("substituted text is not rescanned", func(t *testing.T) {
		b := NewBindings().Set("a", ":b:").Set("b", "x")
		got, err := s.Build(":a: :b:", b)
		require.NoError(t, err)
		assert.Equal(t, "':b:' 'x'", got)
	})

	t.Run("unmatched tokens stay verbatim", func(t *testing.T) {
		got, err := s.Build("a = :a: AND b = :b:", Bind("a", 1).Set("unused", 9))
		require.NoError(t, err)
		assert.Equal(t, "a = 1 AND b = :b:", got)
	})

	t.Run("empty bindings return template", func(t *testing.T) {
		got, err := s.Build("SELECT 1", NewBindings())
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1", got)
	})

	t.Run("injection attempt is quoted", func(t *testing.T) {
		got, err := s.Build("WHERE name = :n:", Bind("n", "x' OR '1'='1"))
		require.NoError(t, err)
		assert.Equal(t, `WHERE name = 'x\' OR \'1\'=\'1'`, got)
	})

	t.Run("nil bindings", func(t *testing.T) {
		_, err := s.Build("SELECT 1", nil)
		assert.ErrorIs(t, err, ErrInvalidBindingShape)
	})

	t.Run("key with colon", func(t *testing.T) {
		_, err := s.Build(":a:b:", Bind("a:b", 1))
		assert.ErrorIs(t, err, ErrInvalidBindingShape)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := s.Build("x", Bind("", 1))
		assert.ErrorIs(t, err, ErrInvalidBindingShape)
	})
}

func TestBuildFromSequenceFails(t *testing.T) {
	_, err := BindingsFrom([]any{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidBindingShape)

	_, err = BindingsFrom([2]string{"a", "b"})
	assert.ErrorIs(t, err, ErrInvalidBindingShape)

	_, err = BindingsFrom(map[int]any{0: "a"})
	assert.ErrorIs(t, err, ErrInvalidBindingShape)

	_, err = BindingsFrom("scalar")
	assert.ErrorIs(t, err, ErrInvalidBindingShape)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tokens("x = :a: AND y = :b: OR z = :a:"))
	assert.Equal(t, []string{"a", "b"}, Tokens(":a:b:"))
	assert.Empty(t, Tokens("SELECT '10:30:00'"))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("a = :a:", Bind("a", 1)))

	err := Check("a = :a: AND b = :b:", Bind("a", 1).Set("c", 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmatchedToken)
	assert.ErrorIs(t, err, ErrUnusedBinding)
	assert.Contains(t, err.Error(), ":b:")
	assert.Contains(t, err.Error(), `"c"`)

	assert.ErrorIs(t, Check("x", nil), ErrInvalidBindingShape)
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"users":      "`users`",
		"a`b":        "`a``b`",
		"`name`":     "`name`",
		"``x``":      "`x`",
		"order":      "`order`",
		"a; DROP x;": "`a; DROP x;`",
	}
	for in, want := range tests {
		assert.Equal(t, want, QuoteIdentifier(in), in)
	}

	assert.Equal(t, "`a`, `b`", QuoteIdentifiers("a", "`b`"))
}
