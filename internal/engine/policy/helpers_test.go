package policy_test

import "strings"

func containsMsg(err error, msg string) bool {
	return err != nil && strings.Contains(err.Error(), msg)
}
