package test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/accessgate/types"
)

// RolePersisterCases defines cases every RolePersister should pass,
// newPersister should return an empty persister every time it is called
func RolePersisterCases(name string, newPersister func() types.RolePersister) bool {
	return Describe(name, func() {
		var (
			rp     types.RolePersister
			ctx    context.Context
			cancel context.CancelFunc
		)

		BeforeEach(func() {
			rp = newPersister()
			ctx, cancel = context.WithCancel(context.Background())
		})

		AfterEach(func() {
			cancel()
		})

		It("lists nothing when empty", func() {
			snap, e := rp.List()
			Expect(e).To(Succeed())
			Expect(snap.Owner.Valid()).To(BeFalse())
			Expect(snap.Admins).To(BeEmpty())
		})

		It("keeps admins in insertion order without duplicates", func() {
			Expect(rp.SetOwner("alan")).To(Succeed())
			for _, id := range []types.Identity{"alan", "karman", "neumann", "karman"} {
				Expect(rp.InsertAdmin(id)).To(Succeed())
			}
			Expect(rp.RemoveAdmin("turing")).To(Succeed())
			Expect(rp.RemoveAdmin("karman")).To(Succeed())
			Expect(rp.RemoveAdmin("karman")).To(Succeed())
			Expect(rp.InsertAdmin("karman")).To(Succeed())

			snap, e := rp.List()
			Expect(e).To(Succeed())
			Expect(snap.Owner).To(Equal(types.Identity("alan")))
			Expect(snap.Admins).To(Equal([]types.Identity{"alan", "neumann", "karman"}))
		})

		It("gen and receive changes", func() {
			w, e := rp.Watch(ctx)
			Expect(e).To(Succeed())

			go func() {
				defer GinkgoRecover()

				Expect(rp.SetOwner("alan")).To(Succeed())
				Expect(rp.InsertAdmin("alan")).To(Succeed())
				Expect(rp.InsertAdmin("karman")).To(Succeed())
				Expect(rp.InsertAdmin("karman")).To(Succeed())
				Expect(rp.RemoveAdmin("alan")).To(Succeed())
				Expect(rp.RemoveAdmin("alan")).To(Succeed())
				Expect(rp.SetOwner("karman")).To(Succeed())
				Expect(rp.SetOwner("karman")).To(Succeed())
			}()

			expected := []types.RoleChange{
				{Identity: "alan", Role: types.OwnerRole, Method: types.PersistInsert},
				{Identity: "alan", Role: types.AdminRole, Method: types.PersistInsert},
				{Identity: "karman", Role: types.AdminRole, Method: types.PersistInsert},
				{Identity: "alan", Role: types.AdminRole, Method: types.PersistDelete},
				{Identity: "karman", Role: types.OwnerRole, Method: types.PersistUpdate},
			}
			for _, change := range expected {
				Eventually(w).Should(Receive(Equal(change)))
			}
			Consistently(w).ShouldNot(Receive())

			Expect(rp.List()).To(Equal(types.RoleSnapshot{
				Owner:  "karman",
				Admins: []types.Identity{"karman"},
			}))
		})

		It("stops sending changes when the watch is canceled", func() {
			wctx, wcancel := context.WithCancel(ctx)
			w, e := rp.Watch(wctx)
			Expect(e).To(Succeed())

			wcancel()
			Eventually(w).Should(BeClosed())
			Expect(rp.SetOwner("alan")).To(Succeed())
		})
	})
}
