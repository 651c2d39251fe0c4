package traditional

import (
	"fmt"
	"strings"

	"datascout/internal/model"
	"datascout/internal/utils"
)

func validateNetworkParams(kind model.EngineKind, params *model.ConnectionParams) error {
	var missing []string
	if strings.TrimSpace(params.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(params.Database) == "" {
		missing = append(missing, "database")
	}
	if strings.TrimSpace(params.Username) == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return utils.NewValidationError("Invalid connection parameters",
			fmt.Sprintf("%s requires %s", kind, strings.Join(missing, ", ")))
	}
	if params.Port < 0 || params.Port > 65535 {
		return utils.NewValidationError("Invalid connection parameters",
			fmt.Sprintf("port %d is out of range", params.Port))
	}
	return nil
}
