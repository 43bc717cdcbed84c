package profile

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/go-logr/stdr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/supremind/accessgate/persist/fake"
	. "github.com/supremind/accessgate/types"
)

func TestProfile(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "profile test suit")
}

var logger = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))

var directPolices = []ProfilePolicy{
	{Identity: "alan", Capability: "recipes:read"},
	{Identity: "alan", Capability: "recipes:write"},
	{Identity: "karman", Capability: "recipes:read"},
	{Identity: "neumann", Capability: "secrets:read"},
	{Identity: "neumann", Capability: "recipes:read"},
}

var _ = Describe("profile implementations", func() {
	var profilers = []struct {
		name string
		ctor func() Profiles
	}{
		{
			name: "thin",
			ctor: func() Profiles { return newThinProfiles() },
		},
		{
			name: "synced",
			ctor: func() Profiles { return newSyncedProfiles(newThinProfiles()) },
		},
		{
			name: "persisted",
			ctor: func() Profiles {
				p, e := newPersistedProfiles(context.Background(), newThinProfiles(), fake.NewProfilePersister(), logger)
				Expect(e).To(Succeed())
				return p
			},
		},
	}

	for _, tp := range profilers {
		tp := tp
		Describe(tp.name, func() {
			var p Profiles

			BeforeEach(func() {
				p = tp.ctor()
				for _, policy := range directPolices {
					Expect(p.Grant(policy.Identity, policy.Capability)).To(Succeed())
				}
			})

			It("should know init polices", func() {
				for _, policy := range directPolices {
					Expect(p.Can(policy.Identity, policy.Capability)).To(BeTrue(), fmt.Sprintf("%s can %s", policy.Identity, policy.Capability))
				}
			})

			It("should know nothing about strangers", func() {
				Expect(p.Can("turing", "recipes:read")).To(BeFalse())
				Expect(p.CapabilitiesOf("turing")).To(BeEmpty())
				Expect(p.HoldersOf("missiles:launch")).To(BeEmpty())
			})

			It("should not imply other capabilities", func() {
				Expect(p.Can("karman", "recipes:write")).To(BeFalse())
			})

			It("should grant idempotently", func() {
				Expect(p.Grant("karman", "recipes:read")).To(Succeed())
				Expect(p.HoldersOf("recipes:read")).To(HaveLen(3))
			})

			DescribeTable("revoke capabilities",
				func(id Identity, c Capability) {
					Expect(p.Revoke(id, c)).To(Succeed())
					Expect(p.Can(id, c)).To(BeFalse())
					Expect(p.Revoke(id, c)).To(Succeed())
				},
				Entry("alan recipes:write", Identity("alan"), Capability("recipes:write")),
				Entry("neumann secrets:read", Identity("neumann"), Capability("secrets:read")),
				Entry("never granted", Identity("turing"), Capability("recipes:read")),
			)

			DescribeTable("query capabilities of identity",
				func(id Identity, caps map[Capability]struct{}) {
					Expect(p.CapabilitiesOf(id)).To(Equal(caps))
				},
				Entry("alan", Identity("alan"), map[Capability]struct{}{"recipes:read": {}, "recipes:write": {}}),
				Entry("neumann", Identity("neumann"), map[Capability]struct{}{"secrets:read": {}, "recipes:read": {}}),
			)

			DescribeTable("query holders of capability",
				func(c Capability, ids map[Identity]struct{}) {
					Expect(p.HoldersOf(c)).To(Equal(ids))
				},
				Entry("recipes:read", Capability("recipes:read"), map[Identity]struct{}{"alan": {}, "karman": {}, "neumann": {}}),
				Entry("secrets:read", Capability("secrets:read"), map[Identity]struct{}{"neumann": {}}),
			)

			It("should refuse invalid polices", func() {
				Expect(p.Grant("", "recipes:read")).To(MatchError(ErrInvalidIdentity))
				Expect(p.Grant("alan", "")).To(MatchError(ErrInvalidCapability))
			})

			It("should not leak internal state", func() {
				caps := p.CapabilitiesOf("alan")
				delete(caps, "recipes:read")
				Expect(p.Can("alan", "recipes:read")).To(BeTrue())
			})
		})
	}
})

var _ = Describe("persisted profiles sharing a persister", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		a, b   Profiles
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		pp := fake.NewProfilePersister()

		var e error
		a, e = newPersistedProfiles(ctx, newThinProfiles(), pp, logger.WithName("a"))
		Expect(e).To(Succeed())
		Expect(a.Grant("alan", "recipes:read")).To(Succeed())

		b, e = newPersistedProfiles(ctx, newThinProfiles(), pp, logger.WithName("b"))
		Expect(e).To(Succeed())
	})

	AfterEach(func() {
		cancel()
	})

	It("should load polices persisted before", func() {
		Expect(b.Can("alan", "recipes:read")).To(BeTrue())
	})

	It("should follow changes made by others", func() {
		Expect(a.Grant("karman", "recipes:write")).To(Succeed())
		Eventually(func() bool { return b.Can("karman", "recipes:write") }).Should(BeTrue())

		Expect(b.Revoke("alan", "recipes:read")).To(Succeed())
		Eventually(func() bool { return a.Can("alan", "recipes:read") }).Should(BeFalse())
	})

	It("should never bring revoked capabilities back with its own changes", func() {
		for i := 0; i < 200; i++ {
			Expect(a.Grant("neumann", "secrets:read")).To(Succeed())
			Expect(a.Revoke("neumann", "secrets:read")).To(Succeed())
			Consistently(func() bool { return a.Can("neumann", "secrets:read") }, "2ms", "200us").Should(BeFalse())
		}
		Eventually(a.(*persistedProfiles).echoes.Pending).Should(BeZero())
		Eventually(func() bool { return b.Can("neumann", "secrets:read") }).Should(BeFalse())
	})
})
