package service

import (
	"testing"

	"instacord/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestThreadFilter_InScope(t *testing.T) {
	tests := []struct {
		name      string
		allowList []string
		users     []string
		want      bool
	}{
		{
			name:      "empty allow-list accepts everyone",
			allowList: nil,
			users:     []string{"anyone"},
			want:      true,
		},
		{
			name:      "participant on the list",
			allowList: []string{"alice"},
			users:     []string{"bob", "alice"},
			want:      true,
		},
		{
			name:      "no participant on the list",
			allowList: []string{"alice"},
			users:     []string{"bob"},
			want:      false,
		},
		{
			name:      "match is case-insensitive",
			allowList: []string{"Alice"},
			users:     []string{"ALICE"},
			want:      true,
		},
		{
			name:      "whitespace entries are ignored",
			allowList: []string{" ", "alice"},
			users:     []string{"alice"},
			want:      true,
		},
		{
			name:      "thread without participants",
			allowList: []string{"alice"},
			users:     nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewThreadFilter(tt.allowList)

			thread := models.Thread{ThreadID: "t1"}
			for _, u := range tt.users {
				thread.Users = append(thread.Users, models.ThreadUser{Username: u})
			}

			assert.Equal(t, tt.want, f.InScope(&thread))
		})
	}
}

func TestThreadFilter_Empty(t *testing.T) {
	assert.True(t, NewThreadFilter(nil).Empty())
	assert.True(t, NewThreadFilter([]string{"", "  "}).Empty())
	assert.False(t, NewThreadFilter([]string{"alice"}).Empty())
}
