package youtube

import (
	"encoding/json"

	types "github.com/yungbote/acadboost-backend/internal/domain"
)

// ToolResult is either a list of videos or a degraded marker carrying a
// human-readable message. On the wire it is a JSON array or
// {"error":true,"message":"..."}.
type ToolResult struct {
	Videos  []types.LinkRecord
	Error   bool
	Message string
}

func Found(videos []types.LinkRecord) ToolResult {
	if videos == nil {
		videos = []types.LinkRecord{}
	}
	return ToolResult{Videos: videos}
}

func Degraded(msg string) ToolResult {
	return ToolResult{Error: true, Message: msg}
}

type degradedWire struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func (r ToolResult) MarshalJSON() ([]byte, error) {
	if r.Error {
		return json.Marshal(degradedWire{Error: true, Message: r.Message})
	}
	videos := r.Videos
	if videos == nil {
		videos = []types.LinkRecord{}
	}
	return json.Marshal(videos)
}

func (r *ToolResult) UnmarshalJSON(b []byte) error {
	var videos []types.LinkRecord
	if err := json.Unmarshal(b, &videos); err == nil {
		*r = Found(videos)
		return nil
	}
	var d degradedWire
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*r = Degraded(d.Message)
	return nil
}
