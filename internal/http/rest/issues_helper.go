package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/likes"
	"github.com/reportit/reportit_api/internal/metrics"
	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/internal/status"
	"github.com/reportit/reportit_api/util/values"
	"github.com/reportit/reportit_api/util/websockets"
)

// CreateIssueHelper runs duplicate detection before the insert and kicks off
// area tagging after it. A duplicate is a conflict, not an error: the
// existing issue rides along in the response so the reporter can like or
// comment on it instead.
func (api *API) CreateIssueHelper(ctx context.Context, req model.CreateIssueRequest) (model.Issue, string, string, error) {
	if err := model.ValidateCategories(req.Categories); err != nil {
		return model.Issue{}, values.BadRequestBody, "Invalid categories", err
	}

	dup, err := api.Dedupe.FindDuplicate(ctx, geo.Point{Lat: req.Latitude, Lon: req.Longitude}, req.Categories)
	if err != nil {
		return model.Issue{}, values.Error, "Failed to check for duplicates", err
	}
	if dup != nil {
		metrics.DuplicatesRejectedTotal.Inc()
		return dup.Existing, values.Conflict, "A matching issue already exists nearby", dup
	}

	issue, err := api.CreateIssueRepo(ctx, req)
	if err != nil {
		return model.Issue{}, values.Error, "Failed to create issue", err
	}
	metrics.IssuesCreatedTotal.Inc()

	// Area tagging needs the geocoder; it never blocks or fails the create.
	go api.tagIssueArea(issue)
	go api.broadcastIssueUpdate(issue, websockets.MsgTypeIssueUpdate)

	return issue, values.Created, "Issue created successfully", nil
}

// tagIssueArea resolves the administrative area containing the issue and tags
// the row with it. Falls back to fetching the boundary from the geocoder when
// no loaded area covers the point.
func (api *API) tagIssueArea(issue model.Issue) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	areaID, err := api.FindAreaContaining(ctx, issue.Location())
	if err != nil {
		log.Printf("area lookup failed for issue %s: %v", issue.ID, err)
		return
	}

	if areaID == nil {
		place, err := api.Deps.Geocoder.ReverseGeocode(ctx, issue.Latitude, issue.Longitude)
		if err != nil || place.City == "" {
			log.Printf("reverse geocode failed for issue %s: %v", issue.ID, err)
			return
		}
		boundary, err := api.Deps.Geocoder.FetchBoundary(ctx, place.City)
		if err != nil {
			log.Printf("boundary fetch failed for issue %s: %v", issue.ID, err)
			return
		}
		id, err := api.UpsertAreaLocation(ctx, model.AreaLocation{
			Name:     boundary.Name,
			City:     place.City,
			Country:  place.Country,
			Boundary: boundary.Geometry,
		})
		if err != nil {
			log.Printf("area upsert failed for issue %s: %v", issue.ID, err)
			return
		}
		areaID = &id
	}

	if err := api.SetIssueArea(ctx, issue.ID, *areaID); err != nil {
		log.Printf("area tagging failed for issue %s: %v", issue.ID, err)
	}
}

func (api *API) broadcastIssueUpdate(issue model.Issue, msgType string) {
	if api.Deps.WebSocket == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":  msgType,
		"issue": issue,
	})
	if err != nil {
		return
	}
	api.Deps.WebSocket.BroadcastIssueUpdate(payload, issue.Latitude, issue.Longitude, api.Config.NearbyAlertRadiusM)
}

// canTransition is the role gate layered over the transition graph. Admins
// moderate, officials work their assigned issues, and only the reporter
// confirms or reopens a pending resolution.
func canTransition(actor model.Actor, issue model.Issue, to status.Status) error {
	switch to {
	case status.Approved, status.Rejected:
		if actor.Role != model.RoleAdmin {
			return &model.PermissionError{Action: "moderate issues", Role: actor.Role}
		}
	case status.Solving, status.OfficialSolved:
		if actor.Role != model.RoleOfficial && actor.Role != model.RoleAdmin {
			return &model.PermissionError{Action: "work on issues", Role: actor.Role}
		}
	case status.Solved, status.Reopened:
		// Reserved for the reporter; no admin override.
		if actor.ID != issue.UserID {
			return &model.PermissionError{Action: "confirm resolution", Role: actor.Role}
		}
	case status.PendingUserConfirmation:
		// Reached through the official_solved auto-advance; direct requests
		// are admin-only.
		if actor.Role != model.RoleAdmin {
			return &model.PermissionError{Action: "request confirmation", Role: actor.Role}
		}
	default:
		return &model.PermissionError{Action: "change issue status", Role: actor.Role}
	}
	return nil
}

// ChangeIssueStatusHelper applies a status transition under a row lock. The
// status write, any official assignments, and every notification row commit
// together; push delivery happens after the commit. Approving an issue runs
// the assignment fan-out. An official marking an issue solved auto-advances
// it to pending_user_confirmation so the reporter is asked immediately.
func (api *API) ChangeIssueStatusHelper(ctx context.Context, actor model.Actor, issueID uuid.UUID, to status.Status) (model.Issue, string, string, error) {
	var (
		issue   model.Issue
		pending []pendingNotification
	)

	err := api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		issue, txErr = getIssueForUpdate(ctx, tx, issueID)
		if txErr != nil {
			return txErr
		}

		if txErr = canTransition(actor, issue, to); txErr != nil {
			return txErr
		}
		if txErr = status.Validate(issue.Status, to); txErr != nil {
			metrics.InvalidTransitionsTotal.Inc()
			return txErr
		}

		store := api.newTxStore(tx)
		if txErr = api.applyTransition(ctx, tx, store, &issue, to); txErr != nil {
			return txErr
		}

		if to == status.OfficialSolved {
			// The graph guarantees this edge; asking the reporter right away
			// is the point of the intermediate status.
			if txErr = api.applyTransition(ctx, tx, store, &issue, status.PendingUserConfirmation); txErr != nil {
				return txErr
			}
		}

		pending = store.pending
		return nil
	})
	if err != nil {
		switch err.(type) {
		case *model.PermissionError:
			return model.Issue{}, values.NotAllowed, "You are not allowed to make this change", err
		case *status.InvalidTransitionError:
			return model.Issue{}, values.Unprocessable, "Illegal status transition", err
		}
		if err == ErrIssueNotFound {
			return model.Issue{}, values.NotFound, "Issue not found", err
		}
		return model.Issue{}, values.Error, "Failed to change issue status", err
	}

	go api.flushNotifications(pending)
	go api.broadcastIssueUpdate(issue, websockets.MsgTypeStatusUpdate)

	return issue, values.Success, "Issue status changed successfully", nil
}

// applyTransition writes one edge of the graph: the status update, the
// owner's notification, and, on approval, the assignment fan-out.
func (api *API) applyTransition(ctx context.Context, tx pgx.Tx, store *txStore, issue *model.Issue, to status.Status) error {
	if err := updateIssueStatus(ctx, tx, issue.ID, to); err != nil {
		return err
	}
	issue.Status = to
	metrics.StatusTransitionsTotal.WithLabelValues(string(to)).Inc()

	if err := store.Notify(ctx, issue.UserID, status.Message(to), issue.Title, values.ScreenIssueDetail, issue.ID.String()); err != nil {
		return err
	}

	if to == status.Approved {
		// The engine notifies the officials it binds; no second fan-out.
		if _, err := api.assigner(store).Assign(ctx, *issue); err != nil {
			return fmt.Errorf("assigning approved issue: %w", err)
		}
		return nil
	}

	officials, err := store.assignedOfficialUsers(ctx, issue.ID)
	if err != nil {
		return err
	}
	for _, userID := range officials {
		if userID == issue.UserID {
			continue
		}
		if err := store.Notify(ctx, userID, status.Message(to), issue.Title, values.ScreenOfficial, issue.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// ToggleLikeHelper flips the caller's like and tells the issue owner about
// new likes from other users.
func (api *API) ToggleLikeHelper(ctx context.Context, actor model.Actor, issueID uuid.UUID) (likes.Result, string, string, error) {
	var (
		result  likes.Result
		pending []pendingNotification
	)

	err := api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		var txErr error
		result, ownerID, txErr = api.ToggleLikeRepo(ctx, tx, issueID, actor.ID)
		if txErr != nil {
			return txErr
		}

		if result.Liked && ownerID != actor.ID {
			store := api.newTxStore(tx)
			if txErr = store.Notify(ctx, ownerID, "Someone supported your issue", "Your issue received a new like", values.ScreenIssueDetail, issueID.String()); txErr != nil {
				return txErr
			}
			pending = store.pending
		}
		return nil
	})
	if err != nil {
		if err == ErrIssueNotFound {
			return likes.Result{}, values.NotFound, "Issue not found", err
		}
		return likes.Result{}, values.Error, "Failed to toggle like", err
	}

	go api.flushNotifications(pending)

	message := "Issue unliked"
	if result.Liked {
		message = "Issue liked"
	}
	return result, values.Success, message, nil
}

// DeleteIssueHelper removes an issue. Only the reporter or an admin may
// delete; comments, likes and assignments go with it through the cascades.
func (api *API) DeleteIssueHelper(ctx context.Context, actor model.Actor, issueID uuid.UUID) (string, string, error) {
	issue, err := api.GetIssueByIDRepo(ctx, issueID.String())
	if err != nil {
		if err == ErrIssueNotFound {
			return values.NotFound, "Issue not found", err
		}
		return values.Error, "Failed to fetch issue", err
	}

	if actor.ID != issue.UserID && actor.Role != model.RoleAdmin {
		permErr := &model.PermissionError{Action: "delete issues", Role: actor.Role}
		return values.NotAllowed, "You are not allowed to delete this issue", permErr
	}

	if err := api.DeleteIssueRepo(ctx, issueID); err != nil {
		if err == ErrIssueNotFound {
			return values.NotFound, "Issue not found", err
		}
		return values.Error, "Failed to delete issue", err
	}
	return values.Success, "Issue deleted successfully", nil
}

// ToggleCommentLikeHelper flips the caller's like on a comment.
func (api *API) ToggleCommentLikeHelper(ctx context.Context, actor model.Actor, commentID uuid.UUID) (likes.Result, string, string, error) {
	var result likes.Result
	err := api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		result, txErr = api.ToggleCommentLikeRepo(ctx, tx, commentID, actor.ID)
		return txErr
	})
	if err != nil {
		if err == ErrCommentNotFound {
			return likes.Result{}, values.NotFound, "Comment not found", err
		}
		return likes.Result{}, values.Error, "Failed to toggle like", err
	}

	message := "Comment unliked"
	if result.Liked {
		message = "Comment liked"
	}
	return result, values.Success, message, nil
}

// CommentOnIssueHelper persists a comment and notifies the issue owner.
func (api *API) CommentOnIssueHelper(ctx context.Context, actor model.Actor, issueID uuid.UUID, req model.CreateCommentRequest) (model.Comment, string, string, error) {
	issue, err := api.GetIssueByIDRepo(ctx, issueID.String())
	if err != nil {
		if err == ErrIssueNotFound {
			return model.Comment{}, values.NotFound, "Issue not found", err
		}
		return model.Comment{}, values.Error, "Failed to fetch issue", err
	}

	var (
		comment model.Comment
		pending []pendingNotification
	)
	err = api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		comment, txErr = api.AddCommentRepo(ctx, tx, model.Comment{
			IssueID:  issueID,
			UserID:   actor.ID,
			ParentID: req.ParentID,
			ReplyTo:  req.ReplyTo,
			Content:  req.Content,
		})
		if txErr != nil {
			return txErr
		}

		if issue.UserID != actor.ID {
			store := api.newTxStore(tx)
			if txErr = store.Notify(ctx, issue.UserID, "New comment on your issue", req.Content, values.ScreenIssueDetail, issueID.String()); txErr != nil {
				return txErr
			}
			pending = store.pending
		}
		return nil
	})
	if err != nil {
		return model.Comment{}, values.Error, "Failed to add comment", err
	}

	go api.flushNotifications(pending)

	return comment, values.Created, "Comment added successfully", nil
}

// GetNearbyIssuesHelper serves the nearby listing through the cache; repo
// queries stay cache-oblivious.
func (api *API) GetNearbyIssuesHelper(ctx context.Context, params model.NearbyIssuesParams) ([]model.Issue, string, string, error) {
	key := fmt.Sprintf("issues:nearby:%.5f:%.5f:%.0f:%v:%d:%d",
		params.Latitude, params.Longitude, params.Radius, params.Statuses, params.Page, params.PageSize)

	if cached, ok := api.Deps.Cache.Get(ctx, key); ok {
		var issues []model.Issue
		if err := json.Unmarshal(cached, &issues); err == nil {
			return issues, values.Success, "Nearby issues fetched successfully", nil
		}
	}

	issues, err := api.GetNearbyIssuesRepo(ctx, params)
	if err != nil {
		return nil, values.Error, "Failed to fetch nearby issues", err
	}

	if body, err := json.Marshal(issues); err == nil {
		api.Deps.Cache.Set(ctx, key, body, time.Duration(api.Config.NearbyCacheTTL)*time.Second)
	}

	return issues, values.Success, "Nearby issues fetched successfully", nil
}
