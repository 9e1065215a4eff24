package practice

import "github.com/google/uuid"

const customPrefix = "custom-"

func newPromptID() string {
	return customPrefix + uuid.NewString()
}
