package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/partnerincentives/engagements-config/app/dto"
	"github.com/partnerincentives/engagements-config/config"
	"github.com/partnerincentives/engagements-config/models"
	"github.com/partnerincentives/engagements-config/repository"
	"github.com/partnerincentives/engagements-config/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AssociationFlow defines the customer-association operations exposed to the API
type AssociationFlow interface {
	GetCustomerAssociation(ctx context.Context, req *dto.GetAssociationRequest, metadata *ClientMetadata) (*dto.GetAssociationResponse, error)
	SaveCustomerAssociation(ctx context.Context, req *dto.SaveAssociationRequest, metadata *ClientMetadata) (*dto.SaveAssociationResponse, error)
	DeleteCustomerAssociation(ctx context.Context, req *dto.DeleteAssociationRequest, metadata *ClientMetadata) (*dto.DeleteAssociationResponse, error)
}

// AssociationFlowImpl implements the customer-association business flow
type AssociationFlowImpl struct {
	engagementRepo repository.EngagementRepository
	componentRepo  repository.AssociationComponentRepository
	auditRepo      repository.AuditLogRepository
	cacheConfig    *config.CacheConfig
	rc             *redis.Client
	db             *gorm.DB
}

// NewAssociationFlow creates a new association flow instance
func NewAssociationFlow(
	engagementRepo repository.EngagementRepository,
	componentRepo repository.AssociationComponentRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) AssociationFlow {
	return &AssociationFlowImpl{
		engagementRepo: engagementRepo,
		componentRepo:  componentRepo,
		auditRepo:      auditRepo,
		cacheConfig:    cacheConfig,
		rc:             rc,
		db:             db,
	}
}

// GetCustomerAssociation returns the engagement's association configuration
// with derived end dates. Engagements without a stored component get a
// single default configuration set spanning the whole window.
func (s *AssociationFlowImpl) GetCustomerAssociation(ctx context.Context, req *dto.GetAssociationRequest, metadata *ClientMetadata) (*dto.GetAssociationResponse, error) {
	record, _, err := s.loadRecord(ctx, req.EngagementID)
	if err != nil {
		return nil, err
	}

	association, err := NewCustomerAssociation(record, req.CanEdit)
	if err != nil {
		return nil, err
	}

	resp := &dto.GetAssociationResponse{
		Message:            "Customer association retrieved successfully",
		Association:        association.ToRecord(),
		IsEditable:         association.IsEditable(),
		HasSavedConfigSets: association.HasSavedConfigSets(),
	}

	// The stored partition may predate a server-side window change.
	if change := DetectEngagementDurationChange(record, association); change.Changed {
		resp.DurationChange = &dto.DurationChangeDTO{Changed: true, Message: change.Message}
	}

	return resp, nil
}

// SaveCustomerAssociation validates the submitted partition and persists it,
// creating the component on first save and replacing its configuration
// afterwards.
func (s *AssociationFlowImpl) SaveCustomerAssociation(ctx context.Context, req *dto.SaveAssociationRequest, metadata *ClientMetadata) (*dto.SaveAssociationResponse, error) {
	engagement, err := s.getEngagement(ctx, req.EngagementID)
	if err != nil {
		return nil, err
	}

	if !engagement.State.IsEditable() {
		errMsg := fmt.Sprintf("Association save rejected: engagement %s is in state %s", engagement.EngagementID, engagement.State)
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationSaveFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("ENGAGEMENT_NOT_EDITABLE", "Engagement is not editable in its current state", ErrEngagementNotEditable)
	}

	existing, err := s.componentRepo.ByEngagementID(ctx, req.EngagementID)
	if err != nil {
		return nil, NewBusinessError("ASSOCIATION_LOOKUP_FAILED", "Failed to lookup customer association", err)
	}

	record := models.CustomerAssociationRecord{
		Metadata: engagementMetadata(engagement),
		Component: &models.AssociationComponentRecord{
			EngagementID:      engagement.EngagementID,
			EngagementVersion: engagement.Version,
			ConfigSets:        req.ConfigSets,
		},
	}
	if existing != nil {
		record.Component.ID = existing.UUID.String()
		record.Component.CreationDate = utils.FormatISODate(existing.CreationDate)
	}

	// Reconstructing the aggregate re-validates the partition invariants.
	association, err := NewCustomerAssociation(record, req.CanEdit)
	if err != nil {
		errMsg := fmt.Sprintf("Association save failed: %s", err.Error())
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationSaveFailed, errMsg, false, &errMsg, metadata)
		return nil, err
	}

	componentRec := association.ToComponentRecord()
	created := existing == nil

	var component *models.AssociationComponent
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if created {
			component = &models.AssociationComponent{
				EngagementID:      engagement.EngagementID,
				EngagementVersion: engagement.Version,
				CreationDate:      utils.UTCNow(),
				ConfigSets:        models.ConfigSetRecordList(componentRec.ConfigSets),
			}
			return s.componentRepo.Save(txCtx, component)
		}

		existing.EngagementVersion = engagement.Version
		existing.ConfigSets = models.ConfigSetRecordList(componentRec.ConfigSets)
		component = existing
		return s.componentRepo.Update(txCtx, *existing)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Association save failed: %s", err.Error())
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationSaveFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("ASSOCIATION_SAVE_FAILED", "Failed to save customer association", err)
	}

	action := models.AuditActionAssociationUpdated
	if created {
		action = models.AuditActionAssociationCreated
	}
	msg := fmt.Sprintf("Customer association saved for engagement %s (%d config sets)", engagement.EngagementID, len(componentRec.ConfigSets))
	_ = s.createAuditLog(ctx, engagement.EngagementID, action, msg, true, nil, metadata)

	s.invalidateCache(ctx, engagement.EngagementID)

	saved := association.ToRecord()
	saved.Component.ID = component.UUID.String()
	saved.Component.CreationDate = utils.FormatISODate(component.CreationDate)

	resp := &dto.SaveAssociationResponse{
		Message:     "Customer association saved successfully",
		Association: saved,
		Created:     created,
	}

	// The submitted sets may still carry end dates from a window that moved
	// server-side; the save realigned them, so tell the caller it happened.
	if change := DetectEngagementDurationChange(record, association); change.Changed {
		resp.DurationChange = &dto.DurationChangeDTO{Changed: true, Message: change.Message}
	}

	return resp, nil
}

// DeleteCustomerAssociation removes the stored component, reverting the
// engagement to its default single-set configuration.
func (s *AssociationFlowImpl) DeleteCustomerAssociation(ctx context.Context, req *dto.DeleteAssociationRequest, metadata *ClientMetadata) (*dto.DeleteAssociationResponse, error) {
	engagement, err := s.getEngagement(ctx, req.EngagementID)
	if err != nil {
		return nil, err
	}

	if !engagement.State.IsEditable() {
		errMsg := fmt.Sprintf("Association delete rejected: engagement %s is in state %s", engagement.EngagementID, engagement.State)
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationDeleteFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("ENGAGEMENT_NOT_EDITABLE", "Engagement is not editable in its current state", ErrEngagementNotEditable)
	}

	var deleted bool
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		deleted, err = s.componentRepo.DeleteByEngagementID(txCtx, engagement.EngagementID)
		return err
	})
	if err != nil {
		errMsg := fmt.Sprintf("Association delete failed: %s", err.Error())
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationDeleteFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("ASSOCIATION_DELETE_FAILED", "Failed to delete customer association", err)
	}

	if deleted {
		msg := fmt.Sprintf("Customer association deleted for engagement %s", engagement.EngagementID)
		_ = s.createAuditLog(ctx, engagement.EngagementID, models.AuditActionAssociationDeleted, msg, true, nil, metadata)
		s.invalidateCache(ctx, engagement.EngagementID)
	}

	return &dto.DeleteAssociationResponse{
		Message: "Customer association deleted successfully",
		Deleted: deleted,
	}, nil
}

func (s *AssociationFlowImpl) getEngagement(ctx context.Context, engagementID string) (*models.Engagement, error) {
	engagement, err := s.engagementRepo.ByEngagementID(ctx, engagementID)
	if err != nil {
		return nil, NewBusinessError("ENGAGEMENT_LOOKUP_FAILED", "Failed to lookup engagement", err)
	}
	if engagement == nil {
		return nil, NewBusinessErrorf("ENGAGEMENT_NOT_FOUND", "Engagement %s not found", ErrEngagementNotFound, engagementID)
	}
	return engagement, nil
}

// loadRecord assembles the full association record for an engagement,
// consulting the redis cache before hitting the database.
func (s *AssociationFlowImpl) loadRecord(ctx context.Context, engagementID string) (models.CustomerAssociationRecord, *models.Engagement, error) {
	cacheKey := redisKey(*s.cacheConfig, utils.AssociationCacheKeyPrefix+engagementID)

	if s.cacheConfig.Enabled && s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var record models.CustomerAssociationRecord
			if err := json.Unmarshal(bs, &record); err == nil {
				return record, nil, nil
			}
		}
	}

	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return models.CustomerAssociationRecord{}, nil, err
	}

	component, err := s.componentRepo.ByEngagementID(ctx, engagementID)
	if err != nil {
		return models.CustomerAssociationRecord{}, nil, NewBusinessError("ASSOCIATION_LOOKUP_FAILED", "Failed to lookup customer association", err)
	}

	record := models.CustomerAssociationRecord{
		Metadata: engagementMetadata(engagement),
	}
	if component != nil {
		record.Component = &models.AssociationComponentRecord{
			ID:                component.UUID.String(),
			EngagementID:      component.EngagementID,
			EngagementVersion: component.EngagementVersion,
			CreationDate:      utils.FormatISODate(component.CreationDate),
			ConfigSets:        []models.ConfigurationSetRecord(component.ConfigSets),
		}
	}

	if s.cacheConfig.Enabled && s.rc != nil {
		if bs, err := json.Marshal(record); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.AssociationCacheTTL).Err()
		}
	}

	return record, engagement, nil
}

func (s *AssociationFlowImpl) invalidateCache(ctx context.Context, engagementID string) {
	if !s.cacheConfig.Enabled || s.rc == nil {
		return
	}
	cacheKey := redisKey(*s.cacheConfig, utils.AssociationCacheKeyPrefix+engagementID)
	_ = s.rc.Del(ctx, cacheKey).Err()
}

// engagementMetadata converts an engagement row to its wire metadata form.
func engagementMetadata(e *models.Engagement) models.EngagementMetadata {
	return models.EngagementMetadata{
		ID:               e.EngagementID,
		State:            e.State,
		Version:          e.Version,
		ApprovedVersions: []int64(e.ApprovedVersions),
		StartDate:        utils.FormatISODate(e.StartDate),
		EndDate:          utils.FormatISODate(e.EndDate),
		ProgramGuid:      e.ProgramGuid,
		PartnerRole:      e.PartnerRole,
		SolutionArea:     e.SolutionArea,
		AssociationType:  e.AssociationType,
	}
}

// createAuditLog creates an audit log entry for an association operation
func (s *AssociationFlowImpl) createAuditLog(ctx context.Context, engagementID, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		EngagementID: &engagementID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	if err := s.auditRepo.Save(ctx, audit); err != nil {
		return err
	}

	return nil
}
