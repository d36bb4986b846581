package infer

import (
	"testing"

	"github.com/jfmengels/elm-language-server/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type supplyOnly struct {
	Context
	supply types.Supply
}

func (s *supplyOnly) Supply() *types.Supply { return &s.supply }

func TestMergeClasses(t *testing.T) {
	cases := []struct {
		a, b types.Class
		want types.Class
		ok   bool
	}{
		{types.ClassNone, types.ClassNumber, types.ClassNumber, true},
		{types.ClassNumber, types.ClassComparable, types.ClassNumber, true},
		{types.ClassComparable, types.ClassAppendable, types.ClassCompAppend, true},
		{types.ClassCompAppend, types.ClassAppendable, types.ClassCompAppend, true},
		{types.ClassNumber, types.ClassAppendable, types.ClassNone, false},
		{types.ClassNumber, types.ClassCompAppend, types.ClassNone, false},
	}
	for _, tc := range cases {
		got, ok := mergeClasses(tc.a, tc.b)
		assert.Equal(t, tc.ok, ok, "%s + %s", tc.a, tc.b)
		assert.Equal(t, tc.want, got, "%s + %s", tc.a, tc.b)
	}
}

func TestRollback(t *testing.T) {
	e := newEngine(&supplyOnly{})
	a, b := e.supply.Fresh(), e.supply.Fresh()
	left := &types.Tuple{Items: []types.Type{a, types.Int()}}
	right := &types.Tuple{Items: []types.Type{types.String(), b}}
	bad := &types.Tuple{Items: []types.Type{b, types.Char()}}

	require.NoError(t, e.unify(left, right))
	assert.Equal(t, "( String, Int )", types.ToString(e.sub.apply(left)))

	c := e.supply.Fresh()
	mark := e.sub.mark()
	err := e.unify(&types.Tuple{Items: []types.Type{c, c}}, bad)
	require.Error(t, err)
	e.sub.rollback(mark)
	assert.Same(t, c, e.sub.prune(c), "a failed unification leaves no binding behind")
}

func TestComparableConstraint(t *testing.T) {
	e := newEngine(&supplyOnly{})
	comparable := e.supply.FreshClass(types.ClassComparable)

	assert.NoError(t, e.unify(comparable, &types.Tuple{Items: []types.Type{types.Int(), types.String()}}))

	other := e.supply.FreshClass(types.ClassComparable)
	assert.Error(t, e.unify(other, types.Bool()))

	elem := e.supply.Fresh()
	list := e.supply.FreshClass(types.ClassComparable)
	require.NoError(t, e.unify(list, types.List(elem)))
	assert.Equal(t, types.ClassComparable, e.sub.prune(elem).(*types.Var).Class)
}

func TestFunctionBalancing(t *testing.T) {
	e := newEngine(&supplyOnly{})
	ret := e.supply.Fresh()
	curried := &types.Function{
		Params: []types.Type{types.Int()},
		Return: &types.Function{Params: []types.Type{types.String()}, Return: types.Bool()},
	}
	flat := &types.Function{Params: []types.Type{types.Int(), types.String()}, Return: ret}
	require.NoError(t, e.unify(curried, flat))
	assert.Equal(t, "Bool", types.ToString(e.sub.apply(ret)))

	other := e.supply.Fresh()
	require.NoError(t, e.unify(&types.Function{Params: []types.Type{types.Int()}, Return: other}, flat))
	assert.Equal(t, "String -> Bool", types.ToString(e.sub.apply(other)))
}
