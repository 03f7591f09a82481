package shopguard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shopguard/core"
	"github.com/hupe1980/shopguard/model"
)

type yesJudge struct{}

func (yesJudge) Judge(context.Context, string, string) (bool, string, error) {
	return true, "", nil
}

func TestShopGuard_ChatDefaults(t *testing.T) {
	m := model.NewMockModel(&model.Decision{Text: "The Smart Speaker costs $79.00."})

	sg := New(m, func(o *Options) {
		o.RelevanceJudge = yesJudge{}
	})

	resp, err := sg.Chat(context.Background(), "", "how much is the speaker?")
	require.NoError(t, err)
	assert.Equal(t, "The Smart Speaker costs $79.00.", resp.Result.Reply)
	assert.Equal(t, core.SourceAgent, resp.Result.Source)
	assert.NotEmpty(t, resp.SessionID)
}

func TestShopGuard_ChatBlocksToxicPrompt(t *testing.T) {
	m := model.NewMockModel()

	sg := New(m, func(o *Options) {
		o.RelevanceJudge = yesJudge{}
	})

	resp, err := sg.Chat(context.Background(), "", "you are a worthless moron")
	require.NoError(t, err)
	assert.Equal(t, core.SourceFallback, resp.Result.Source)
	assert.Equal(t, 0, m.Calls())
}

func TestShopGuard_DefaultCatalogSeeded(t *testing.T) {
	sg := New(model.NewMockModel(), func(o *Options) { o.RelevanceJudge = yesJudge{} })
	assert.Equal(t, 4, sg.Catalog().Len())
}
