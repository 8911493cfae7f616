package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cultiva/internal/audit"
	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store/memory"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/requestcontext"
)

var (
	admin   = domain.Actor("0x000000000000000000000000000000000000ad01")
	alice   = domain.Actor("0x00000000000000000000000000000000000a11ce")
	bob     = domain.Actor("0x0000000000000000000000000000000000000b0b")
	carol   = domain.Actor("0x00000000000000000000000000000000000ca401")
	fixedTS = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
)

type mirrorRecorder struct {
	events []audit.Event
}

func (m *mirrorRecorder) Emit(_ context.Context, event audit.Event) error {
	m.events = append(m.events, event)
	return nil
}

type cacheRecorder struct {
	certs       map[domain.FarmID]*models.Certification
	statuses    map[domain.FarmID]*models.FarmStatus
	invalidated []domain.FarmID
}

func newCacheRecorder() *cacheRecorder {
	return &cacheRecorder{
		certs:    make(map[domain.FarmID]*models.Certification),
		statuses: make(map[domain.FarmID]*models.FarmStatus),
	}
}

func (c *cacheRecorder) SaveCertification(_ context.Context, cert *models.Certification) error {
	c.certs[cert.FarmID] = cert
	return nil
}

func (c *cacheRecorder) FindCertification(_ context.Context, id domain.FarmID) (*models.Certification, error) {
	return c.certs[id], nil
}

func (c *cacheRecorder) SaveStatus(_ context.Context, status *models.FarmStatus) error {
	c.statuses[status.FarmID] = status
	return nil
}

func (c *cacheRecorder) FindStatus(_ context.Context, id domain.FarmID) (*models.FarmStatus, error) {
	return c.statuses[id], nil
}

func (c *cacheRecorder) Invalidate(_ context.Context, id domain.FarmID) error {
	delete(c.certs, id)
	delete(c.statuses, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	mirror *mirrorRecorder
	cache  *cacheRecorder
	svc    *Service
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), fixedTS)
	s.store = memory.New(admin)
	s.mirror = &mirrorRecorder{}
	s.cache = newCacheRecorder()
	s.svc = New(s.store, WithMirror(s.mirror), WithCache(s.cache))
}

func (s *RegistrySuite) register(owner domain.Actor) domain.FarmID {
	s.T().Helper()
	id, err := s.svc.Register(s.ctx, owner, "Sunrise Farm", "Valley Road 1", "dairy", []string{"organic"})
	s.Require().NoError(err)
	return id
}

func (s *RegistrySuite) TestRegister() {
	s.Run("issues sequential ids starting at one", func() {
		s.SetupTest()
		first := s.register(alice)
		second := s.register(bob)
		s.Equal(domain.FarmID(1), first)
		s.Equal(domain.FarmID(2), second)

		count, err := s.svc.FarmCount(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(2), count)
	})

	s.Run("caller becomes owner and status starts pending and visible", func() {
		s.SetupTest()
		id := s.register(alice)

		farm, err := s.svc.GetFarm(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(farm)
		s.Equal(alice, farm.Owner)
		s.Equal("Sunrise Farm", farm.Name)
		s.Equal(fixedTS, farm.RegisteredAt)

		status, err := s.svc.GetStatus(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(status)
		s.Equal(models.StatusPending, status.Status)
		s.True(status.Visible)

		category, err := s.svc.GetCategory(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(category)
		s.Equal("dairy", category.Primary)
		s.Equal([]string{"organic"}, category.Tags)
	})

	s.Run("writes history entry one with action Registered", func() {
		s.SetupTest()
		id := s.register(alice)

		count, err := s.svc.GetHistoryCount(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(uint32(1), count)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 1)
		s.Require().NoError(err)
		s.Require().NotNil(entry)
		s.Equal(models.ActionRegistered, entry.Action)
		s.Equal(alice, entry.Performer)
		s.Equal(fixedTS, entry.Timestamp)
	})

	s.Run("invalid details reject without consuming an id", func() {
		s.SetupTest()
		_, err := s.svc.Register(s.ctx, alice, "", "Valley Road 1", "dairy", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDetails))

		_, err = s.svc.Register(s.ctx, alice, "Sunrise Farm", "", "dairy", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDetails))

		count, err := s.svc.FarmCount(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(0), count)

		id := s.register(alice)
		s.Equal(domain.FarmID(1), id)
	})
}

func (s *RegistrySuite) TestUpdateDetails() {
	s.Run("owner updates mutable fields", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.UpdateDetails(s.ctx, alice, id, "Sunset Farm", "Hill Road 9")
		s.Require().NoError(err)

		farm, err := s.svc.GetFarm(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Sunset Farm", farm.Name)
		s.Equal("Hill Road 9", farm.Location)
		s.Equal(alice, farm.Owner)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 2)
		s.Require().NoError(err)
		s.Equal(models.ActionUpdatedDetails, entry.Action)
	})

	s.Run("unknown farm fails not found", func() {
		s.SetupTest()
		err := s.svc.UpdateDetails(s.ctx, alice, 99, "Name", "Location")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-owner rejected even when admin", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.UpdateDetails(s.ctx, admin, id, "Hijacked", "Nowhere")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		farm, err := s.svc.GetFarm(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Sunrise Farm", farm.Name)

		count, err := s.svc.GetHistoryCount(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(uint32(1), count)
	})

	s.Run("invalid input leaves record untouched", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.UpdateDetails(s.ctx, alice, id, "", "Hill Road 9")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDetails))

		farm, err := s.svc.GetFarm(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Sunrise Farm", farm.Name)
		s.Equal("Valley Road 1", farm.Location)
	})
}

func (s *RegistrySuite) TestCertify() {
	s.Run("admin certifies", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.Certify(s.ctx, admin, id, "Gold", 2000, "inspected on site")
		s.Require().NoError(err)

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(cert)
		s.True(cert.Certified)
		s.Equal(admin, cert.Certifier)
		s.Equal("Gold", cert.Level)
		s.Equal(int64(2000), cert.Expiry)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 2)
		s.Require().NoError(err)
		s.Equal(models.ActionCertified, entry.Action)
		s.Equal("Level: Gold", entry.Details)
	})

	s.Run("owner may self-attest", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.Certify(s.ctx, alice, id, "Silver", 1500, "")
		s.Require().NoError(err)

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(alice, cert.Certifier)
	})

	s.Run("third parties rejected", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.Certify(s.ctx, bob, id, "Gold", 2000, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Nil(cert)
	})

	s.Run("re-certification overwrites in place", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Certify(s.ctx, admin, id, "Silver", 1500, ""))
		s.Require().NoError(s.svc.Certify(s.ctx, admin, id, "Gold", 3000, "upgraded"))

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Gold", cert.Level)
		s.Equal(int64(3000), cert.Expiry)
	})
}

func (s *RegistrySuite) TestRevoke() {
	s.Run("admin revokes, record survives uncertified", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Certify(s.ctx, admin, id, "Gold", 2000, ""))

		err := s.svc.Revoke(s.ctx, admin, id, "failed audit")
		s.Require().NoError(err)

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(cert)
		s.False(cert.Certified)
		s.Equal("Gold", cert.Level)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 3)
		s.Require().NoError(err)
		s.Equal(models.ActionRevoked, entry.Action)
		s.Equal("failed audit", entry.Details)
	})

	s.Run("fails not found without certification record", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.Revoke(s.ctx, admin, id, "nothing to revoke")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("owner cannot revoke", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Certify(s.ctx, alice, id, "Silver", 1500, ""))

		err := s.svc.Revoke(s.ctx, alice, id, "changed my mind")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		cert, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.True(cert.Certified)
	})
}

func (s *RegistrySuite) TestCollaborators() {
	s.Run("owner adds collaborator", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.AddCollaborator(s.ctx, alice, id, bob, "harvester", []string{"read", "update"})
		s.Require().NoError(err)

		collab, err := s.svc.GetCollaborator(s.ctx, id, bob)
		s.Require().NoError(err)
		s.Require().NotNil(collab)
		s.Equal("harvester", collab.Role)
		s.Equal([]string{"read", "update"}, collab.Permissions)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 2)
		s.Require().NoError(err)
		s.Equal(models.ActionAddedCollab, entry.Action)
	})

	s.Run("duplicate pair rejected", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.AddCollaborator(s.ctx, alice, id, bob, "harvester", nil))

		err := s.svc.AddCollaborator(s.ctx, alice, id, bob, "driver", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))

		collab, err := s.svc.GetCollaborator(s.ctx, id, bob)
		s.Require().NoError(err)
		s.Equal("harvester", collab.Role)
	})

	s.Run("same collaborator on two farms is fine", func() {
		s.SetupTest()
		first := s.register(alice)
		second := s.register(carol)
		s.Require().NoError(s.svc.AddCollaborator(s.ctx, alice, first, bob, "harvester", nil))
		s.Require().NoError(s.svc.AddCollaborator(s.ctx, carol, second, bob, "driver", nil))
	})

	s.Run("only the owner may add", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.AddCollaborator(s.ctx, admin, id, bob, "harvester", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistrySuite) TestUpdateStatus() {
	s.Run("owner and admin may update", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.UpdateStatus(s.ctx, alice, id, "Active", true))
		s.Require().NoError(s.svc.UpdateStatus(s.ctx, admin, id, "Suspended", false))

		status, err := s.svc.GetStatus(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Suspended", status.Status)
		s.False(status.Visible)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 3)
		s.Require().NoError(err)
		s.Equal(models.ActionStatusUpdated, entry.Action)
		s.Equal("Suspended", entry.Details)
	})

	s.Run("others rejected", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.UpdateStatus(s.ctx, bob, id, "Active", true)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown farm fails not found", func() {
		s.SetupTest()
		err := s.svc.UpdateStatus(s.ctx, alice, 42, "Active", true)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty status rejected", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.UpdateStatus(s.ctx, alice, id, "", true)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDetails))

		status, err := s.svc.GetStatus(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, status.Status)
	})
}

func (s *RegistrySuite) TestRevenueShares() {
	s.Run("owner sets a share", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.SetShare(s.ctx, alice, id, bob, 40))

		share, err := s.svc.GetShare(s.ctx, id, bob)
		s.Require().NoError(err)
		s.Require().NotNil(share)
		s.Equal(uint8(40), share.Percentage)
		s.Zero(share.TotalReceived)

		entry, err := s.svc.GetHistoryEntry(s.ctx, id, 2)
		s.Require().NoError(err)
		s.Equal(models.ActionSetRevenueShare, entry.Action)
	})

	s.Run("boundary percentages accepted", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.SetShare(s.ctx, alice, id, bob, 0))
		s.Require().NoError(s.svc.SetShare(s.ctx, alice, id, bob, 100))
	})

	s.Run("out of range percentage rejected", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.SetShare(s.ctx, alice, id, bob, 101)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPercentage))

		err = s.svc.SetShare(s.ctx, alice, id, bob, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPercentage))

		share, err := s.svc.GetShare(s.ctx, id, bob)
		s.Require().NoError(err)
		s.Nil(share)
	})

	s.Run("only the owner may set", func() {
		s.SetupTest()
		id := s.register(alice)
		err := s.svc.SetShare(s.ctx, admin, id, bob, 50)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistrySuite) TestHistoryCap() {
	id := s.register(alice)

	// Entry 1 is "Registered"; fill the trail to the cap.
	for i := 1; i < models.MaxHistoryEntries; i++ {
		s.Require().NoError(s.svc.UpdateStatus(s.ctx, alice, id, "Active", true))
	}
	count, err := s.svc.GetHistoryCount(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint32(models.MaxHistoryEntries), count)

	// The next mutation would need entry 51: the whole operation must
	// fail, including its own state write.
	err = s.svc.UpdateStatus(s.ctx, alice, id, "Suspended", false)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidDetails))

	status, err := s.svc.GetStatus(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Active", status.Status)
	s.True(status.Visible)

	count, err = s.svc.GetHistoryCount(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint32(models.MaxHistoryEntries), count)

	// Entry ids stay contiguous from 1.
	for i := uint32(1); i <= count; i++ {
		entry, err := s.svc.GetHistoryEntry(s.ctx, id, i)
		s.Require().NoError(err)
		s.Require().NotNil(entry)
		s.Equal(i, entry.EntryID)
	}
}

func (s *RegistrySuite) TestPauseSwitch() {
	s.Run("only admin toggles", func() {
		s.SetupTest()
		err := s.svc.Pause(s.ctx, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		s.Require().NoError(s.svc.Pause(s.ctx, admin))
		paused, err := s.svc.IsPaused(s.ctx)
		s.Require().NoError(err)
		s.True(paused)
	})

	s.Run("pause blocks every mutation but reads still serve", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Pause(s.ctx, admin))

		_, err := s.svc.Register(s.ctx, bob, "Blocked Farm", "Nowhere", "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.UpdateDetails(s.ctx, alice, id, "X", "Y"), dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.Certify(s.ctx, admin, id, "Gold", 1, ""), dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.Revoke(s.ctx, admin, id, ""), dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.AddCollaborator(s.ctx, alice, id, bob, "", nil), dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.UpdateStatus(s.ctx, alice, id, "Active", true), dErrors.CodePaused))
		s.True(dErrors.HasCode(s.svc.SetShare(s.ctx, alice, id, bob, 10), dErrors.CodePaused))

		farm, err := s.svc.GetFarm(s.ctx, id)
		s.Require().NoError(err)
		s.NotNil(farm)
	})

	s.Run("pause precedes every other check", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Pause(s.ctx, admin))

		// Unknown farm and foreign caller would fail anyway; paused wins.
		err := s.svc.UpdateDetails(s.ctx, bob, 99, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodePaused))
	})

	s.Run("pause is idempotent and unpause restores service", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Pause(s.ctx, admin))
		s.Require().NoError(s.svc.Pause(s.ctx, admin))
		s.Require().NoError(s.svc.Unpause(s.ctx, admin))

		paused, err := s.svc.IsPaused(s.ctx)
		s.Require().NoError(err)
		s.False(paused)

		s.register(alice)
	})
}

func (s *RegistrySuite) TestTransferAdmin() {
	s.Run("hands over every privilege at once", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.TransferAdmin(s.ctx, admin, carol))

		current, err := s.svc.GetAdmin(s.ctx)
		s.Require().NoError(err)
		s.Equal(carol, current)

		// Old admin is now an ordinary actor.
		err = s.svc.Pause(s.ctx, admin)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		s.Require().NoError(s.svc.Pause(s.ctx, carol))
	})

	s.Run("non-admin cannot transfer", func() {
		s.SetupTest()
		err := s.svc.TransferAdmin(s.ctx, bob, carol)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("works while paused so a paused registry can recover", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Pause(s.ctx, admin))
		s.Require().NoError(s.svc.TransferAdmin(s.ctx, admin, carol))
		s.Require().NoError(s.svc.Unpause(s.ctx, carol))
	})
}

func (s *RegistrySuite) TestMirrorEmission() {
	s.Run("one event per committed mutation", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Certify(s.ctx, admin, id, "Gold", 2000, ""))

		s.Require().Len(s.mirror.events, 2)
		s.Equal(models.ActionRegistered, s.mirror.events[0].Action)
		s.Equal(uint32(1), s.mirror.events[0].EntryID)
		s.Equal(models.ActionCertified, s.mirror.events[1].Action)
		s.Equal(id, s.mirror.events[1].FarmID)
	})

	s.Run("no event on rejected mutation", func() {
		s.SetupTest()
		id := s.register(alice)
		before := len(s.mirror.events)

		err := s.svc.Certify(s.ctx, bob, id, "Gold", 2000, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Len(s.mirror.events, before)
	})

	s.Run("admin actions mirror without history entries", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Pause(s.ctx, admin))
		s.Require().NoError(s.svc.Unpause(s.ctx, admin))
		s.Require().NoError(s.svc.TransferAdmin(s.ctx, admin, carol))

		s.Require().Len(s.mirror.events, 3)
		s.Equal(audit.ActionPaused, s.mirror.events[0].Action)
		s.Equal(audit.ActionUnpaused, s.mirror.events[1].Action)
		s.Equal(audit.ActionAdminTransfer, s.mirror.events[2].Action)
		for _, event := range s.mirror.events {
			s.Zero(event.FarmID)
			s.Zero(event.EntryID)
		}
	})
}

func (s *RegistrySuite) TestSnapshotCache() {
	s.Run("reads populate, mutations invalidate", func() {
		s.SetupTest()
		id := s.register(alice)
		s.Require().NoError(s.svc.Certify(s.ctx, admin, id, "Gold", 2000, ""))

		_, err := s.svc.GetCertification(s.ctx, id)
		s.Require().NoError(err)
		s.Contains(s.cache.certs, id)

		s.Require().NoError(s.svc.Revoke(s.ctx, admin, id, "audit"))
		s.NotContains(s.cache.certs, id)
		s.Contains(s.cache.invalidated, id)
	})

	s.Run("cached snapshot served without store hit", func() {
		s.SetupTest()
		id := s.register(alice)
		s.cache.statuses[id] = &models.FarmStatus{FarmID: id, Status: "Cached", Visible: true}

		status, err := s.svc.GetStatus(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Cached", status.Status)
	})
}

func (s *RegistrySuite) TestReadsNeverFailOnAbsence() {
	farm, err := s.svc.GetFarm(s.ctx, 7)
	s.Require().NoError(err)
	s.Nil(farm)

	cert, err := s.svc.GetCertification(s.ctx, 7)
	s.Require().NoError(err)
	s.Nil(cert)

	share, err := s.svc.GetShare(s.ctx, 7, bob)
	s.Require().NoError(err)
	s.Nil(share)

	entry, err := s.svc.GetHistoryEntry(s.ctx, 7, 1)
	s.Require().NoError(err)
	s.Nil(entry)

	count, err := s.svc.GetHistoryCount(s.ctx, 7)
	s.Require().NoError(err)
	s.Zero(count)
}
