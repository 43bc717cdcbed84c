package accessgate_test

import (
	"context"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	. "github.com/supremind/accessgate"
	"github.com/supremind/accessgate/ledger/memory"
	. "github.com/supremind/accessgate/types"
)

var ctx = context.Background()

func as(id Identity) context.Context {
	return WithCaller(ctx, id)
}

var _ = Describe("gate construction", func() {
	It("should refuse gates without owner", func() {
		_, e := New(ctx, "")
		Expect(e).To(MatchError(ErrNoOwner))
		Expect(func() { MustNew(ctx, "") }).To(Panic())
	})

	It("should start with the creator as owner and sole admin", func() {
		g := MustNew(ctx, "alice", WithLogger(logr.Discard()))
		Expect(g.Owner()).To(Equal(Identity("alice")))
		Expect(g.Admins()).To(Equal([]Identity{"alice"}))
		Expect(g.IsOwner("alice")).To(BeTrue())
		Expect(g.IsAdmin("alice")).To(BeTrue())
		Expect(g.IsOwner("bob")).To(BeFalse())
	})
})

var _ = Describe("gated calls", func() {
	var g *Gate
	BeforeEach(func() {
		g = MustNew(ctx, "A", WithLogger(logr.Discard()))
	})

	It("should gate calls by the admins appointed by the owner", func() {
		Expect(g.AddAdmins(as("A"), "B")).To(Succeed())

		Expect(g.Check(as("B"), Admin)).To(Succeed())

		e := g.Check(as("C"), Admin)
		Expect(e).To(MatchError(ErrRestricted))
		reason, ok := ReasonOf(e)
		Expect(ok).To(BeTrue())
		Expect(reason).To(Equal(Restricted))
	})

	table.DescribeTable("decisions by level", func(caller Identity, l Level, granted bool) {
		Expect(g.AddAdmins(as("A"), "B")).To(Succeed())

		d, e := g.Authorize(as(caller), l)
		Expect(e).To(Succeed())
		Expect(d.Granted()).To(Equal(granted))
	},
		table.Entry("owner at owner level", Identity("A"), Owner, true),
		table.Entry("owner at admin level", Identity("A"), Admin, true),
		table.Entry("admin at owner level", Identity("B"), Owner, false),
		table.Entry("admin at admin level", Identity("B"), Admin, true),
		table.Entry("admin at public level", Identity("B"), Public, true),
		table.Entry("stranger at admin level", Identity("C"), Admin, false),
		table.Entry("stranger at public level", Identity("C"), Public, true),
	)

	It("should not let strangers touch the admin set", func() {
		Expect(g.AddAdmins(as("C"), "C")).To(MatchError(ErrRestricted))
		Expect(g.RemoveAdmins(as("C"), "A")).To(MatchError(ErrRestricted))
		Expect(g.Admins()).To(Equal([]Identity{"A"}))
	})

	It("should require a caller for privileged calls only", func() {
		Expect(g.Check(ctx, Public)).To(Succeed())
		Expect(g.Check(ctx, Admin)).To(MatchError(ErrNoCaller))
		Expect(g.AddAdmins(ctx, "B")).To(MatchError(ErrNoCaller))
		Expect(g.Admins()).To(Equal([]Identity{"A"}))
	})

	It("should hand over the ownership", func() {
		Expect(g.TransferOwner(as("B"), "B")).To(MatchError(ErrRestricted))
		Expect(g.TransferOwner(as("A"), "B")).To(Succeed())

		Expect(g.Owner()).To(Equal(Identity("B")))
		Expect(g.Admins()).To(Equal([]Identity{"A"}))
		Expect(g.Check(as("B"), Owner)).To(Succeed())
		Expect(g.Check(as("A"), Owner)).To(MatchError(ErrRestricted))
	})

	It("should manage capabilities", func() {
		Expect(g.Grant(as("B"), "B", "read")).To(MatchError(ErrRestricted))
		Expect(g.Grant(as("A"), "B", "read")).To(Succeed())
		Expect(g.Grant(as("A"), "B", "write")).To(Succeed())
		Expect(g.Grant(as("A"), "C", "read")).To(Succeed())

		Expect(g.Can("B", "read")).To(BeTrue())
		Expect(g.Can("C", "write")).To(BeFalse())
		Expect(g.CapabilitiesOf("B")).To(haveExactKeys(Capability("read"), Capability("write")))
		Expect(g.HoldersOf("read")).To(haveExactKeys(Identity("B"), Identity("C")))

		Expect(g.Revoke(as("A"), "B", "write")).To(Succeed())
		Expect(g.Revoke(as("A"), "B", "write")).To(Succeed())
		Expect(g.CapabilitiesOf("B")).To(haveExactKeys(Capability("read")))
	})

	It("should identify callers with the resolver", func() {
		g := MustNew(ctx, "A",
			WithLogger(logr.Discard()),
			WithResolver(ResolverFunc(func(context.Context) (Identity, error) { return "A", nil })),
		)
		Expect(g.AddAdmins(ctx, "B")).To(Succeed())
		Expect(g.Admins()).To(Equal([]Identity{"A", "B"}))
	})
})

var _ = Describe("paid calls", func() {
	var (
		g      *Gate
		ledger *memory.Ledger
	)
	BeforeEach(func() {
		ledger = memory.New(logr.Discard())
		Expect(ledger.Deposit("bob", 100)).To(Succeed())
		Expect(ledger.Deposit("alice", 100)).To(Succeed())
		g = MustNew(ctx, "alice", WithLogger(logr.Discard()), WithLedger(ledger))
	})

	It("should charge exactly the price and refund the change", func() {
		call, e := ledger.Attach("bob", 30)
		Expect(e).To(Succeed())

		rcpt, e := g.Pay(WithCall(ctx, call), Admin, 20)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeTrue())
		Expect(rcpt.Consumed).To(Equal(Credit(20)))
		Expect(rcpt.Refunded).To(Equal(Credit(10)))
		Expect(ledger.Balance("bob")).To(Equal(Credit(80)))
		Expect(ledger.Collected()).To(Equal(Credit(20)))
	})

	It("should refund short payments", func() {
		call, e := ledger.Attach("bob", 5)
		Expect(e).To(Succeed())

		rcpt, e := g.Pay(WithCall(ctx, call), Admin, 20)
		Expect(e).To(MatchError(ErrInsufficientPayment))
		Expect(rcpt.Refunded).To(Equal(Credit(5)))
		Expect(ledger.Balance("bob")).To(Equal(Credit(100)))
		Expect(ledger.Collected()).To(BeZero())
	})

	It("should never charge the owner", func() {
		call, e := ledger.Attach("alice", 30)
		Expect(e).To(Succeed())

		rcpt, e := g.Pay(WithCall(ctx, call), Owner, 20)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeFalse())
		Expect(rcpt.Consumed).To(BeZero())
		Expect(ledger.Balance("alice")).To(Equal(Credit(100)))
	})

	It("should refund released calls", func() {
		call, e := ledger.Attach("bob", 30)
		Expect(e).To(Succeed())

		rcpt, e := g.Release(WithCall(ctx, call))
		Expect(e).To(Succeed())
		Expect(rcpt.Refunded).To(Equal(Credit(30)))
		Expect(ledger.Balance("bob")).To(Equal(Credit(100)))
	})

	It("should require a call", func() {
		_, e := g.Pay(as("bob"), Admin, 20)
		Expect(e).To(MatchError(ErrNoCall))
		_, e = g.Release(as("bob"))
		Expect(e).To(MatchError(ErrNoCall))
	})
})

var _ = Describe("preset polices", func() {
	It("should let the super user act as an admin but not as the owner", func() {
		g := MustNew(ctx, "alice", WithLogger(logr.Discard()), WithPresetPolices(SuperUser("root")))

		Expect(g.Check(as("root"), Admin)).To(Succeed())
		Expect(g.Check(as("root"), Owner)).To(MatchError(ErrRestricted))
		Expect(g.IsAdmin("root")).To(BeFalse())
	})

	It("should let the super user pass paid calls, with or without a ledger", func() {
		free := MustNew(ctx, "alice", WithLogger(logr.Discard()), WithPresetPolices(SuperUser("root")))
		rcpt, e := free.Pay(WithCall(ctx, NewCall("root")), Admin, 10)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeFalse())

		ledger := memory.New(logr.Discard())
		Expect(ledger.Deposit("root", 10)).To(Succeed())
		metered := MustNew(ctx, "alice", WithLogger(logr.Discard()), WithLedger(ledger), WithPresetPolices(SuperUser("root")))
		call, e := ledger.Attach("root", 10)
		Expect(e).To(Succeed())
		rcpt, e = metered.Pay(WithCall(ctx, call), Admin, 10)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeFalse())
		Expect(ledger.Balance("root")).To(Equal(Credit(10)))
	})

	It("should let capability holders act as admins", func() {
		g := MustNew(ctx, "alice", WithLogger(logr.Discard()), WithPresetPolices(CapabilityHolders("operate")))

		Expect(g.Check(as("bob"), Admin)).To(MatchError(ErrRestricted))
		Expect(g.Grant(as("alice"), "bob", "operate")).To(Succeed())
		Expect(g.Check(as("bob"), Admin)).To(Succeed())
	})
})
