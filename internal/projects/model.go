package projects

const (
	StageLive        = "LIVE"
	StageDevelopment = "DEVELOPMENT"
)

// Ref identifies a processing project.
type Ref struct {
	Name  string `json:"name"`
	Arn   string `json:"arn"`
	Stage string `json:"stage"`
}
