package blueprints

// Ref identifies a blueprint registered with the remote service.
type Ref struct {
	Name  string `json:"name"`
	Arn   string `json:"arn"`
	Stage string `json:"stage"`
}

// Schema is a blueprint schema document loaded from the schema store.
type Schema struct {
	Name     string
	Path     string
	Document []byte
}
