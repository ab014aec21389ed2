package usecase_room

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/quipstack/core/internal/model"
	bus_mocks "github.com/quipstack/core/internal/usecase/room/mocks/bus"
	repo_mocks "github.com/quipstack/core/internal/usecase/room/mocks/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseRoomUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase  *Usecase
	roomRepo *repo_mocks.RoomRepository
	bus      *bus_mocks.EventBus
	ctx      context.Context
}

func initResources(t provider.T) *resources {
	roomRepo := repo_mocks.NewRoomRepository(t)
	bus := bus_mocks.NewEventBus(t)
	usecase := New(roomRepo, bus)

	return &resources{
		usecase:  usecase,
		roomRepo: roomRepo,
		bus:      bus,
		ctx:      context.Background(),
	}
}

func validHostID() model.UserID {
	return model.UserID(uuid.New().String())
}

func validRoom(hostID model.UserID) model.Room {
	return model.Room{
		ID:     uuid.New(),
		Code:   "AB12",
		Status: model.StatusOpen,
		HostID: hostID,
		DeckID: "starter",
	}
}

func (suite *UsecaseRoomUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	hostID := validHostID()

	testCases := []struct {
		name          string
		hostID        model.UserID
		setupMocks    func(r *resources)
		expectError   bool
		expectedError error
	}{
		{
			name:   "Should create room on first attempt",
			hostID: hostID,
			setupMocks: func(r *resources) {
				r.roomRepo.On("CreateWithHost", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Member")).
					Return(nil).Once()
				r.bus.On("Publish", mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("model.ChangeEvent")).
					Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:   "Should retry with a fresh code on conflict",
			hostID: hostID,
			setupMocks: func(r *resources) {
				r.roomRepo.On("CreateWithHost", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Member")).
					Return(ErrCodeConflict).Once()
				r.roomRepo.On("CreateWithHost", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Member")).
					Return(nil).Once()
				r.bus.On("Publish", mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("model.ChangeEvent")).
					Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:   "Should give up after exhausting attempts",
			hostID: hostID,
			setupMocks: func(r *resources) {
				r.roomRepo.On("CreateWithHost", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Member")).
					Return(ErrCodeConflict).Times(createAttempts)
			},
			expectError:   true,
			expectedError: ErrCodeSpaceExhausted,
		},
		{
			name:          "Should reject anonymous caller",
			hostID:        model.EmptyUserID,
			setupMocks:    func(r *resources) {},
			expectError:   true,
			expectedError: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			room, err := r.usecase.Create(r.ctx, tc.hostID, "starter")

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Len(t, room.Code, 4)
				assert.Equal(t, tc.hostID, room.HostID)
				assert.Equal(t, model.StatusOpen, room.Status)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func (suite *UsecaseRoomUnitSuite) TestCreateSwallowsPublishFailure(t provider.T) {
	t.Parallel()

	r := initResources(t)
	hostID := validHostID()

	r.roomRepo.On("CreateWithHost", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Member")).
		Return(nil).Once()
	r.bus.On("Publish", mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("model.ChangeEvent")).
		Return(assert.AnError).Once()

	_, err := r.usecase.Create(r.ctx, hostID, "starter")

	assert.NoError(t, err, "push delivery is best-effort, the sweep repairs it")
	r.bus.AssertExpectations(t)
}

func (suite *UsecaseRoomUnitSuite) TestResolveByCode(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		code          string
		setupMocks    func(r *resources, room model.Room)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should resolve canonical code",
			code: "AB12",
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, "AB12").Return(room, nil).Once()
			},
			expectError: false,
		},
		{
			name: "Should normalize lowercase input before lookup",
			code: "ab12",
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, "AB12").Return(room, nil).Once()
			},
			expectError: false,
		},
		{
			name: "Should map missing room to ErrNotFound",
			code: "ZZZZ",
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, "ZZZZ").Return(model.Room{}, ErrNotFound).Once()
			},
			expectError:   true,
			expectedError: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom(validHostID())
			tc.setupMocks(r, room)

			got, err := r.usecase.ResolveByCode(r.ctx, tc.code)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, room.ID, got.ID)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func (suite *UsecaseRoomUnitSuite) TestJoin(t provider.T) {
	t.Parallel()

	hostID := validHostID()
	playerID := validHostID()

	testCases := []struct {
		name          string
		userID        model.UserID
		role          model.Role
		setupMocks    func(r *resources, room model.Room)
		expectedRole  model.Role
		expectError   bool
		expectedError error
	}{
		{
			name:   "Should join as player by default",
			userID: playerID,
			role:   "",
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("UpsertMember", r.ctx, mock.MatchedBy(func(m model.Member) bool {
					return m.UserID == playerID && m.Role == model.RolePlayer
				})).Return(model.Member{ID: uuid.New(), RoomID: room.ID, UserID: playerID, Role: model.RolePlayer}, nil).Once()
				r.bus.On("Publish", room.ID, mock.AnythingOfType("model.ChangeEvent")).Return(nil).Once()
			},
			expectedRole: model.RolePlayer,
		},
		{
			name:   "Should keep host role for the host even when asking for player",
			userID: hostID,
			role:   model.RolePlayer,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("UpsertMember", r.ctx, mock.MatchedBy(func(m model.Member) bool {
					return m.UserID == hostID && m.Role == model.RoleHost
				})).Return(model.Member{ID: uuid.New(), RoomID: room.ID, UserID: hostID, Role: model.RoleHost}, nil).Once()
				r.bus.On("Publish", room.ID, mock.AnythingOfType("model.ChangeEvent")).Return(nil).Once()
			},
			expectedRole: model.RoleHost,
		},
		{
			name:   "Should refuse host role for a non-host",
			userID: playerID,
			role:   model.RoleHost,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
			},
			expectError:   true,
			expectedError: ErrPermissionDenied,
		},
		{
			name:   "Should join as spectator on request",
			userID: playerID,
			role:   model.RoleSpectator,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("UpsertMember", r.ctx, mock.MatchedBy(func(m model.Member) bool {
					return m.Role == model.RoleSpectator
				})).Return(model.Member{ID: uuid.New(), RoomID: room.ID, UserID: playerID, Role: model.RoleSpectator}, nil).Once()
				r.bus.On("Publish", room.ID, mock.AnythingOfType("model.ChangeEvent")).Return(nil).Once()
			},
			expectedRole: model.RoleSpectator,
		},
		{
			name:   "Should refuse joining a closed room",
			userID: playerID,
			role:   "",
			setupMocks: func(r *resources, room model.Room) {
				closed := room
				closed.Status = model.StatusClosed
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(closed, nil).Once()
			},
			expectError:   true,
			expectedError: ErrRoomClosed,
		},
		{
			name:          "Should reject anonymous caller",
			userID:        model.EmptyUserID,
			role:          "",
			setupMocks:    func(r *resources, room model.Room) {},
			expectError:   true,
			expectedError: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom(hostID)
			tc.setupMocks(r, room)

			member, err := r.usecase.Join(r.ctx, room.Code, tc.userID, tc.role)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedRole, member.Role)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func (suite *UsecaseRoomUnitSuite) TestSetDeck(t provider.T) {
	t.Parallel()

	hostID := validHostID()

	testCases := []struct {
		name          string
		requester     model.UserID
		setupMocks    func(r *resources, room model.Room)
		expectError   bool
		expectedError error
	}{
		{
			name:      "Should set deck when idle",
			requester: hostID,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("HasSubmittingRound", r.ctx, room.ID).Return(false, nil).Once()
				r.roomRepo.On("SetDeck", r.ctx, room.ID, "expansion").Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:      "Should refuse while a round is submitting",
			requester: hostID,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("HasSubmittingRound", r.ctx, room.ID).Return(true, nil).Once()
			},
			expectError:   true,
			expectedError: ErrActiveRound,
		},
		{
			name:      "Should refuse non-host",
			requester: validHostID(),
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
			},
			expectError:   true,
			expectedError: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom(hostID)
			tc.setupMocks(r, room)

			err := r.usecase.SetDeck(r.ctx, room.Code, tc.requester, "expansion")

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func (suite *UsecaseRoomUnitSuite) TestClose(t provider.T) {
	t.Parallel()

	hostID := validHostID()

	testCases := []struct {
		name          string
		requester     model.UserID
		setupMocks    func(r *resources, room model.Room)
		expectError   bool
		expectedError error
	}{
		{
			name:      "Should close as host",
			requester: hostID,
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
				r.roomRepo.On("SetStatus", r.ctx, room.ID, model.StatusClosed).Return(nil).Once()
			},
			expectError: false,
		},
		{
			name:      "Should refuse non-host",
			requester: validHostID(),
			setupMocks: func(r *resources, room model.Room) {
				r.roomRepo.On("ByCode", r.ctx, room.Code).Return(room, nil).Once()
			},
			expectError:   true,
			expectedError: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom(hostID)
			tc.setupMocks(r, room)

			err := r.usecase.Close(r.ctx, room.Code, tc.requester)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRoomUnitSuite))
}
