package audit

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// UseCase lecturas del registro de auditoría. Solo lectura: las entradas se
// escriben únicamente dentro de las transacciones de las mutaciones.
type UseCase struct {
	logRepo repository.ActivityLogRepository
}

// NewUseCase construye el caso de uso de auditoría.
func NewUseCase(logRepo repository.ActivityLogRepository) *UseCase {
	return &UseCase{logRepo: logRepo}
}

// List devuelve una página de entradas ordenadas por secuencia ascendente.
func (uc *UseCase) List(ctx context.Context, q dto.ActivityLogQuery) (*dto.ActivityLogResponse, error) {
	q.DefaultPage()
	entries, total, err := uc.logRepo.List(repository.ActivityLogFilter{
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		From:       q.From,
		To:         q.To,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ActivityLogResponse{
		Page: dto.NewPage(q.PageRequest, total),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.ActivityLogEntryResponse{
			Seq:        e.ID,
			Actor:      e.Actor,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			Before:     e.Before,
			After:      e.After,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
