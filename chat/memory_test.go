package chat_test

import (
	"testing"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/chat/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, chat.NewMemoryStore())
}
