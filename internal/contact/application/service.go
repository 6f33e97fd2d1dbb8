// Package application 联系表单服务的应用层
package application

import "context"

// ContactService 联系表单门面服务，整合 Manager 和 Query
type ContactService struct {
	manager *ContactManager
	query   *ContactQuery
}

// NewContactService 构造函数
func NewContactService(manager *ContactManager, query *ContactQuery) *ContactService {
	return &ContactService{manager: manager, query: query}
}

// --- Manager (Writes) ---

func (s *ContactService) Submit(ctx context.Context, cmd SubmitContactCommand) (*SubmitResult, error) {
	return s.manager.Submit(ctx, cmd)
}

// --- Query (Reads) ---

func (s *ContactService) RecentDeliveries(ctx context.Context, limit int) ([]DeliveryDTO, error) {
	return s.query.RecentDeliveries(ctx, limit)
}

func (s *ContactService) Readiness(ctx context.Context) (*ReadinessDTO, error) {
	return s.query.Readiness(ctx)
}
