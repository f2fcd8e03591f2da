package kakao

import (
	getsafe "kakao-store-bot/util/get_safe"
)

// Request is the Kakao open-builder skill payload. Params and clientExtra
// values are loosely typed on the wire, so accessors go through getsafe.
type Request struct {
	UserRequest struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Utterance string `json:"utterance"`
	} `json:"userRequest"`
	Action struct {
		Params      map[string]any `json:"params"`
		ClientExtra map[string]any `json:"clientExtra"`
	} `json:"action"`
}

func (r Request) UserKey() string {
	return r.UserRequest.User.ID
}

func (r Request) Utterance() string {
	return r.UserRequest.Utterance
}

// Param returns a string slot from the open-builder NLU parameters.
func (r Request) Param(name string) string {
	return getsafe.String(r.Action.Params, name)
}

// Extra returns a value forwarded by a button's clientExtra payload.
func (r Request) Extra(name string) string {
	return getsafe.String(r.Action.ClientExtra, name)
}
