package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// targetCollection maps a reportable target to its collection.
func targetCollection(t models.TargetType) (string, bool) {
	switch t {
	case models.TargetPost:
		return database.PostsCollection, true
	case models.TargetComment:
		return database.CommentsCollection, true
	case models.TargetReply:
		return database.RepliesCollection, true
	case models.TargetProfile:
		return database.ProfilesCollection, true
	}
	return "", false
}

// TargetExists reports whether the referenced document exists.
func TargetExists(ctx context.Context, t models.TargetType, id primitive.ObjectID) (bool, error) {
	coll, ok := targetCollection(t)
	if !ok {
		return false, fmt.Errorf("%w: unknown target type %q", ErrInvalidInput, t)
	}
	n, err := database.DB.Collection(coll).CountDocuments(ctx, bson.M{"_id": id})
	return n > 0, err
}

// CreateReport files a user report. One pending report per reporter and target.
func CreateReport(ctx context.Context, reporter primitive.ObjectID, t models.TargetType, id primitive.ObjectID, reason, details string) (*models.Report, error) {
	exists, err := TargetExists(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	coll := database.DB.Collection(database.ReportsCollection)
	dup, err := coll.CountDocuments(ctx, bson.M{
		"reporter":    reporter,
		"target_type": t,
		"target_id":   id,
		"status":      models.ReportPending,
	})
	if err != nil {
		return nil, fmt.Errorf("check duplicate report: %w", err)
	}
	if dup > 0 {
		return nil, fmt.Errorf("%w: report already pending", ErrConflict)
	}

	r := &models.Report{
		ID:         primitive.NewObjectID(),
		Reporter:   &reporter,
		TargetType: t,
		TargetID:   id,
		Reason:     SanitizeText(reason),
		Details:    SanitizeText(details),
		Status:     models.ReportPending,
		CreatedAt:  time.Now(),
	}
	if _, err := coll.InsertOne(ctx, r); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

// CloseReport resolves or dismisses a pending report and logs the action.
func CloseReport(ctx context.Context, adminID string, reportID primitive.ObjectID, status models.ReportStatus) (*models.Report, error) {
	action := models.ActionResolveReport
	switch status {
	case models.ReportResolved:
	case models.ReportDismissed:
		action = models.ActionDismissReport
	default:
		return nil, fmt.Errorf("%w: status must be resolved or dismissed", ErrInvalidInput)
	}

	now := time.Now()
	var r models.Report
	err := database.DB.Collection(database.ReportsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": reportID, "status": models.ReportPending},
		bson.M{"$set": bson.M{"status": status, "resolved_by": adminID, "resolved_at": now}},
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("close report: %w", err)
	}
	r.Status, r.ResolvedBy, r.ResolvedAt = status, adminID, &now

	if err := recordAction(ctx, &models.AdminAction{
		AdminID:    adminID,
		Action:     action,
		TargetType: r.TargetType,
		TargetID:   r.TargetID,
		Report:     &r.ID,
	}); err != nil {
		return nil, err
	}
	return &r, nil
}

// actionEffect describes the document change behind an admin action.
type actionEffect struct {
	target models.TargetType
	from   bson.M
	set    bson.M
}

var actionEffects = map[models.AdminActionType]actionEffect{
	models.ActionRemovePost:       {models.TargetPost, bson.M{"status": models.StatusActive}, bson.M{"status": models.StatusRemoved}},
	models.ActionRestorePost:      {models.TargetPost, bson.M{"status": models.StatusRemoved}, bson.M{"status": models.StatusActive}},
	models.ActionRemoveComment:    {models.TargetComment, bson.M{"status": models.StatusActive}, bson.M{"status": models.StatusRemoved}},
	models.ActionRemoveReply:      {models.TargetReply, bson.M{"status": models.StatusActive}, bson.M{"status": models.StatusRemoved}},
	models.ActionSuspendProfile:   {models.TargetProfile, bson.M{}, bson.M{"is_suspended": true}},
	models.ActionUnsuspendProfile: {models.TargetProfile, bson.M{}, bson.M{"is_suspended": false}},
}

// ValidAdminAction reports whether action can be applied through ApplyAdminAction.
func ValidAdminAction(action models.AdminActionType) bool {
	_, ok := actionEffects[action]
	return ok
}

// ApplyAdminAction performs a moderation action and appends it to the audit log.
// When report is set it must be a pending report on the same target; it is
// then marked resolved.
func ApplyAdminAction(ctx context.Context, adminID string, action models.AdminActionType, targetID primitive.ObjectID, reason string, report *primitive.ObjectID) (*models.AdminAction, error) {
	eff, ok := actionEffects[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
	if report != nil {
		if err := checkLinkedReport(ctx, *report, eff.target, targetID); err != nil {
			return nil, err
		}
	}
	coll, _ := targetCollection(eff.target)

	filter := bson.M{"_id": targetID}
	for k, v := range eff.from {
		filter[k] = v
	}
	var parent struct {
		Post    primitive.ObjectID `bson:"post"`
		Comment primitive.ObjectID `bson:"comment"`
	}
	err := database.DB.Collection(coll).FindOneAndUpdate(ctx, filter,
		bson.M{"$set": eff.set},
		options.FindOneAndUpdate().SetProjection(bson.M{"post": 1, "comment": 1}),
	).Decode(&parent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		exists, err := TargetExists(ctx, eff.target, targetID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s does not apply in the current state", ErrConflict, action)
	}
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", action, err)
	}

	// Removed children drop out of their parent's count like author deletes do.
	switch action {
	case models.ActionRemoveComment:
		err = incCounter(ctx, database.PostsCollection, parent.Post, "comment_count", -1)
	case models.ActionRemoveReply:
		err = incCounter(ctx, database.CommentsCollection, parent.Comment, "reply_count", -1)
	case models.ActionSuspendProfile, models.ActionUnsuspendProfile:
		InvalidateProfileCache(ctx, targetID)
	}
	if err != nil {
		zap.L().Warn("parent counter not adjusted; run reconcile",
			zap.String("action", string(action)), zap.String("target_id", targetID.Hex()), zap.Error(err))
	}

	a := models.AdminAction{
		AdminID:    adminID,
		Action:     action,
		TargetType: eff.target,
		TargetID:   targetID,
		Reason:     SanitizeText(reason),
		Report:     report,
	}
	if err := recordAction(ctx, &a); err != nil {
		return nil, err
	}
	if report != nil {
		now := time.Now()
		_, err := database.DB.Collection(database.ReportsCollection).UpdateOne(ctx,
			bson.M{"_id": *report, "status": models.ReportPending},
			bson.M{"$set": bson.M{"status": models.ReportResolved, "resolved_by": adminID, "resolved_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("resolve report: %w", err)
		}
	}
	return &a, nil
}

// checkLinkedReport requires a pending report filed against target.
func checkLinkedReport(ctx context.Context, reportID primitive.ObjectID, t models.TargetType, targetID primitive.ObjectID) error {
	var r models.Report
	err := database.DB.Collection(database.ReportsCollection).FindOne(ctx, bson.M{"_id": reportID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: report not found", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	if r.Status != models.ReportPending {
		return fmt.Errorf("%w: report is already %s", ErrConflict, r.Status)
	}
	if r.TargetType != t || r.TargetID != targetID {
		return fmt.Errorf("%w: report is about a different target", ErrConflict)
	}
	return nil
}

func recordAction(ctx context.Context, a *models.AdminAction) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	if _, err := database.DB.Collection(database.AdminActionsCollection).InsertOne(ctx, a); err != nil {
		return fmt.Errorf("record admin action: %w", err)
	}
	return nil
}
