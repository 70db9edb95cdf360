package conversation

import (
	"restaurant_chat/src/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		messages []model.Message
		want     string
	}{
		{
			name:     "empty list",
			messages: nil,
			want:     DefaultKey,
		},
		{
			name: "no user message",
			messages: []model.Message{
				{Role: model.RoleSystem, Content: "be helpful"},
				{Role: model.RoleAssistant, Content: "hello"},
			},
			want: DefaultKey,
		},
		{
			name:     "simple question",
			messages: []model.Message{model.UserMessage("How many orders today?")},
			want:     "conv_how_many_orders_today",
		},
		{
			name: "first user message wins",
			messages: []model.Message{
				{Role: model.RoleSystem, Content: "ignored"},
				model.UserMessage("Revenue   last\tweek"),
				model.UserMessage("something else"),
			},
			want: "conv_revenue_last_week",
		},
		{
			name:     "truncated to thirty characters",
			messages: []model.Message{model.UserMessage("abcdefghijklmnopqrstuvwxyz0123456789")},
			want:     "conv_abcdefghijklmnopqrstuvwxyz0123",
		},
		{
			name:     "non ascii stripped",
			messages: []model.Message{model.UserMessage("Quantos pedidos hoje? Último mês!")},
			want:     "conv_quantos_pedidos_hoje_ltimo_m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.messages))
		})
	}
}

func TestKeyIsStable(t *testing.T) {
	first := []model.Message{model.UserMessage("What is the store address?")}
	later := []model.Message{
		model.UserMessage("What is the store address?"),
		model.AssistantMessage("Rua das Flores, 10"),
		model.UserMessage("And the working hours?"),
	}

	assert.Equal(t, Key(first), Key(first))
	assert.Equal(t, Key(first), Key(later))
}
