package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nova/internal/intent"
	"nova/internal/types"
)

func TestRouter_RegistersEveryAction(t *testing.T) {
	engine, _ := newScenario(scenarioDoc)
	r := NewRouter(engine, &fakeGenerator{}, WithLogger(zaptest.NewLogger(t)))
	for _, a := range types.Actions {
		h, ok := r.Handler(a)
		require.True(t, ok, a)
		assert.Equal(t, a, h.Action())
	}
}

func TestRouter_ExecuteIsCaseInsensitive(t *testing.T) {
	engine, buf := newScenario(scenarioDoc)
	r := NewRouter(engine, &fakeGenerator{reply: "# Replaced\n"})
	res := r.Execute(context.Background(), command("EDIT", types.TargetDocument, "replace"), ExecuteOptions{})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "# Replaced\n", buf.GetValue())
	assert.Equal(t, "Edited the document", res.SuccessMessage)
}

func TestRouter_UnknownAction(t *testing.T) {
	engine, buf := newScenario(scenarioDoc)
	gen := &fakeGenerator{reply: "x"}
	r := NewRouter(engine, gen)

	res := r.Execute(context.Background(), command("delte", types.TargetCursor, "x"), ExecuteOptions{})
	assert.False(t, res.Success)
	assert.Equal(t, `unknown action "delte". Did you mean: delete?`, res.Error)

	res = r.Execute(context.Background(), command("zzz", types.TargetCursor, "x"), ExecuteOptions{})
	assert.Equal(t, `unknown action "zzz"`, res.Error)
	assert.Zero(t, gen.Calls())
	assert.Equal(t, scenarioDoc, buf.GetValue())
}

func TestRouter_SuggestActions(t *testing.T) {
	engine, _ := newScenario(scenarioDoc)
	r := NewRouter(engine, nil)
	assert.Equal(t, []string{"delete"}, r.SuggestActions("DEL"))
	assert.LessOrEqual(t, len(r.SuggestActions("e")), maxActionSuggestions)
	assert.Empty(t, r.SuggestActions("xyz"))
}

func TestRouter_Classify(t *testing.T) {
	engine, _ := newScenario(scenarioDoc)
	r := NewRouter(engine, nil)
	assert.Equal(t, intent.Editing, r.Classify("Add a closing remark").Type)
	assert.Equal(t, intent.Consultation, r.Classify("hello").Type)
}
