package domain

// SourceDescriptor identifies one remote feed.
type SourceDescriptor struct {
	Name     string `yaml:"name"     json:"name"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Category string `yaml:"category" json:"category"`
}
