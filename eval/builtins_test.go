package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/ast"
)

func countOf(paths ...ast.Path) *ast.BuiltinExpr {
	args := make([]ast.Expr, len(paths))
	for i, p := range paths {
		args[i] = ast.Ref(p)
	}
	return &ast.BuiltinExpr{Op: ast.BuiltinCount, Args: args}
}

func TestCountHeldPaths(t *testing.T) {
	env := &Env{Items: items{"Bow": 1, "Hookshot": 0, "Hammer": 3}}

	got := mustEval(t, countOf("Bow", "Hookshot", "Hammer"), env)
	assert.True(t, ast.Equal(ast.NumFromInt(2), got))
}

func TestCountQuantityCapsAtOne(t *testing.T) {
	// Five copies still count once.
	env := &Env{Items: items{"Rupee": 5}}

	got := mustEval(t, countOf("Rupee"), env)
	assert.True(t, ast.Equal(ast.NumFromInt(1), got))
}

func TestCountDeduplicatesListing(t *testing.T) {
	env := &Env{Items: items{"Gem": 1}}

	got := mustEval(t, countOf("Gem", "Gem", "Gem"), env)
	assert.True(t, ast.Equal(ast.NumFromInt(1), got))
}

func TestCountEmptyIsZero(t *testing.T) {
	env := &Env{Items: items{}}

	got := mustEval(t, countOf(), env)
	assert.True(t, ast.Equal(ast.NumFromInt(0), got))
}

func TestCountRejectsNonItemPaths(t *testing.T) {
	env := &Env{
		Config: map[ast.Path]ast.Value{"difficulty": ast.NumFromInt(2)},
		Items:  items{},
	}

	_, err := Evaluate(countOf("difficulty"), env)
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestCountUnknownPath(t *testing.T) {
	_, err := Evaluate(countOf("Ghost"), &Env{Items: items{}})
	require.Error(t, err)
	assert.True(t, IsUnresolvedPath(err))
}

func TestCountRejectsNonNameArgs(t *testing.T) {
	e := &ast.BuiltinExpr{Op: ast.BuiltinCount, Args: []ast.Expr{ast.Int(1)}}
	_, err := Evaluate(e, &Env{Items: items{}})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestMinMaxSum(t *testing.T) {
	env := &Env{}
	nums := []ast.Expr{ast.Int(3), ast.Frac(1, 2), ast.Int(7)}

	got := mustEval(t, &ast.BuiltinExpr{Op: ast.BuiltinMin, Args: nums}, env)
	assert.True(t, ast.Equal(ast.Num(big.NewRat(1, 2)), got))

	got = mustEval(t, &ast.BuiltinExpr{Op: ast.BuiltinMax, Args: nums}, env)
	assert.True(t, ast.Equal(ast.NumFromInt(7), got))

	got = mustEval(t, &ast.BuiltinExpr{Op: ast.BuiltinSum, Args: nums}, env)
	assert.True(t, ast.Equal(ast.Num(big.NewRat(21, 2)), got))
}

func TestSumEmptyIsZero(t *testing.T) {
	got := mustEval(t, &ast.BuiltinExpr{Op: ast.BuiltinSum}, &Env{})
	assert.True(t, ast.Equal(ast.NumFromInt(0), got))
}

func TestMinRequiresArguments(t *testing.T) {
	_, err := Evaluate(&ast.BuiltinExpr{Op: ast.BuiltinMin}, &Env{})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))

	_, err = Evaluate(&ast.BuiltinExpr{Op: ast.BuiltinMax}, &Env{})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestMinMaxRejectNonNumbers(t *testing.T) {
	_, err := Evaluate(&ast.BuiltinExpr{Op: ast.BuiltinSum, Args: []ast.Expr{ast.True}}, &Env{})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}
