package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

var (
	ErrGroupNotFound     = repository.ErrGroupNotFound
	ErrNotGroupOwner     = errors.New("only the group owner may perform this action")
	ErrNotInvited        = errors.New("no invitation for this user")
	ErrCannotRemoveOwner = errors.New("the owner cannot be removed from their own group")
)

type GroupRepository interface {
	Create(ctx context.Context, group domain.Group) (domain.Group, error)
	FindByID(ctx context.Context, id uint) (domain.Group, error)
	FindByMember(ctx context.Context, userID uint) ([]domain.Group, error)
	AddInvite(ctx context.Context, groupID uint, email string) error
	RemoveInvite(ctx context.Context, groupID uint, email string) error
	AddMember(ctx context.Context, groupID, userID uint, email string) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
}

type GroupNotifier interface {
	SendGroupInvitation(ctx context.Context, email, groupName, inviterName, groupLink, replyTo string) error
}

type GroupService struct {
	repo       GroupRepository
	userRepo   UserRepository
	notifier   GroupNotifier
	hub        *watch.Hub
	webBaseURL string
}

func NewGroupService(repo GroupRepository, userRepo UserRepository, notifier GroupNotifier, hub *watch.Hub, webBaseURL string) *GroupService {
	return &GroupService{
		repo:       repo,
		userRepo:   userRepo,
		notifier:   notifier,
		hub:        hub,
		webBaseURL: webBaseURL,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, session domain.Session, group domain.Group) (domain.Group, error) {
	group.OwnerID = session.UserID

	created, err := s.repo.Create(ctx, group)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.publish(created)

	return created, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uint) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return group, nil
}

func (s *GroupService) GetGroups(ctx context.Context, session domain.Session) ([]domain.Group, error) {
	groups, err := s.repo.FindByMember(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByMember -> %w", err)
	}

	return groups, nil
}

func (s *GroupService) GetMembers(ctx context.Context, groupID uint) ([]domain.UserInfo, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	infos, err := s.userRepo.FindInfoByIDs(ctx, group.Members)
	if err != nil {
		return nil, fmt.Errorf("s.userRepo.FindInfoByIDs -> %w", err)
	}

	return infos, nil
}

// InviteMember records the invitation, then attempts the notification email.
// The invitation row is the source of truth; a failed email is reported as
// the secondary outcome, never as a failed invitation.
func (s *GroupService) InviteMember(ctx context.Context, session domain.Session, groupID uint, email string) (domain.Group, domain.NotifyOutcome, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, domain.NotifyOutcome{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if group.OwnerID != session.UserID {
		return domain.Group{}, domain.NotifyOutcome{}, ErrNotGroupOwner
	}

	email = strings.ToLower(email)
	if err = s.repo.AddInvite(ctx, groupID, email); err != nil {
		return domain.Group{}, domain.NotifyOutcome{}, fmt.Errorf("s.repo.AddInvite -> %w", err)
	}

	inviter, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return domain.Group{}, domain.NotifyOutcome{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	outcome := domain.NotifySucceeded()
	groupLink := fmt.Sprintf("%s/#/group/%d", s.webBaseURL, groupID)
	err = s.notifier.SendGroupInvitation(ctx, email, group.Name, inviter.DisplayName, groupLink, session.Email)
	if err != nil {
		zap.L().Warn("group invitation email failed",
			zap.Uint("group_id", groupID),
			zap.String("email", email),
			zap.Error(err))
		outcome = domain.NotifyFailed(err)
	}

	updated, err := s.reloadAndPublish(ctx, groupID)
	if err != nil {
		return domain.Group{}, domain.NotifyOutcome{}, err
	}

	return updated, outcome, nil
}

func (s *GroupService) CancelInvite(ctx context.Context, session domain.Session, groupID uint, email string) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if group.OwnerID != session.UserID {
		return domain.Group{}, ErrNotGroupOwner
	}

	if err = s.repo.RemoveInvite(ctx, groupID, strings.ToLower(email)); err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.RemoveInvite -> %w", err)
	}

	return s.reloadAndPublish(ctx, groupID)
}

// AcceptInvite joins the caller to the group their email was invited to and
// clears the invitation.
func (s *GroupService) AcceptInvite(ctx context.Context, session domain.Session, groupID uint) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if group.HasMember(session.UserID) {
		return group, nil
	}

	email := strings.ToLower(session.Email)
	if !group.IsInvited(email) {
		return domain.Group{}, ErrNotInvited
	}

	if err = s.repo.AddMember(ctx, groupID, session.UserID, email); err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.AddMember -> %w", err)
	}

	return s.reloadAndPublish(ctx, groupID)
}

// RemoveMember kicks a member out, or lets a member leave on their own. The
// owner stays a member for the life of the group.
func (s *GroupService) RemoveMember(ctx context.Context, session domain.Session, groupID, userID uint) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if session.UserID != group.OwnerID && session.UserID != userID {
		return domain.Group{}, ErrNotGroupOwner
	}

	if userID == group.OwnerID {
		return domain.Group{}, ErrCannotRemoveOwner
	}

	if err = s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.RemoveMember -> %w", err)
	}

	return s.reloadAndPublish(ctx, groupID)
}

func (s *GroupService) reloadAndPublish(ctx context.Context, groupID uint) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.publish(group)

	return group, nil
}

func (s *GroupService) publish(group domain.Group) {
	s.hub.Publish(watch.Snapshot{Topic: watch.GroupTopic(group.ID), Data: group})
}
