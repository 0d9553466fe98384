package appointment

import (
	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
)

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "invalid id")
	}
	return id, nil
}
