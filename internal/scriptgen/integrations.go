package scriptgen

import (
	"strings"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// Integration is an external service whose helpers are imported, and whose
// settings are added to .env, when a block type mentions its marker.
type Integration struct {
	Name    string
	Marker  string
	Module  string
	EnvKeys []string
}

var integrations = []Integration{
	{
		Name:    "S3",
		Marker:  "s3",
		Module:  "utils.s3_utils",
		EnvKeys: []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "AWS_BUCKET"},
	},
	{
		Name:    "RabbitMQ",
		Marker:  "rabbitmq",
		Module:  "utils.rabbitmq_utils",
		EnvKeys: []string{"RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USER", "RABBITMQ_PASS", "RABBITMQ_EXCHANGE"},
	},
	{
		Name:    "Google Drive",
		Marker:  "gdrive",
		Module:  "utils.gDrive_utils",
		EnvKeys: []string{"GDRIVE_CREDENTIALS_FILE", "GDRIVE_FOLDER_ID"},
	},
}

// Integrations returns the integrations used by a pipeline, each once, in
// order of first use.
func Integrations(pipeline []models.BlockInstance) []Integration {
	used := make([]Integration, 0, len(integrations))
	seen := make(map[string]bool, len(integrations))
	for _, block := range pipeline {
		typeID := strings.ToLower(block.TypeID)
		for _, integration := range integrations {
			if seen[integration.Name] || !strings.Contains(typeID, integration.Marker) {
				continue
			}
			seen[integration.Name] = true
			used = append(used, integration)
		}
	}
	return used
}
