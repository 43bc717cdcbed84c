package test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/accessgate/types"
)

// ProfilePersisterCases defines cases every ProfilePersister should pass,
// newPersister should return an empty persister every time it is called
func ProfilePersisterCases(name string, newPersister func() types.ProfilePersister) bool {
	return Describe(name, func() {
		var (
			pp     types.ProfilePersister
			ctx    context.Context
			cancel context.CancelFunc
		)

		insertPolices := []types.ProfilePolicy{
			{Identity: "alan", Capability: "recipes:read"},
			{Identity: "alan", Capability: "recipes:write"},
			{Identity: "karman", Capability: "recipes:read"},
			{Identity: "neumann", Capability: "secrets:read"},
		}
		removePolices := []types.ProfilePolicy{
			{Identity: "alan", Capability: "recipes:write"},
		}

		BeforeEach(func() {
			pp = newPersister()
			ctx, cancel = context.WithCancel(context.Background())
		})

		AfterEach(func() {
			cancel()
		})

		It("insert and remove policies idempotently", func() {
			policy := insertPolices[0]
			Expect(pp.Insert(policy.Identity, policy.Capability)).To(Succeed())
			Expect(pp.Insert(policy.Identity, policy.Capability)).To(Succeed())
			Expect(pp.List()).To(ConsistOf(policy))

			Expect(pp.Remove(policy.Identity, policy.Capability)).To(Succeed())
			Expect(pp.Remove(policy.Identity, policy.Capability)).To(Succeed())
			Expect(pp.List()).To(BeEmpty())
		})

		It("gen and receive changes", func() {
			w, e := pp.Watch(ctx)
			Expect(e).To(Succeed())

			go func() {
				defer GinkgoRecover()

				for _, policy := range insertPolices {
					Expect(pp.Insert(policy.Identity, policy.Capability)).To(Succeed())
				}
				for _, policy := range removePolices {
					Expect(pp.Remove(policy.Identity, policy.Capability)).To(Succeed())
				}
			}()

			for _, policy := range insertPolices {
				Eventually(w).Should(Receive(Equal(types.ProfileChange{ProfilePolicy: policy, Method: types.PersistInsert})))
			}
			for _, policy := range removePolices {
				Eventually(w).Should(Receive(Equal(types.ProfileChange{ProfilePolicy: policy, Method: types.PersistDelete})))
			}
			Consistently(w).ShouldNot(Receive())

			Expect(pp.List()).To(ConsistOf(
				types.ProfilePolicy{Identity: "alan", Capability: "recipes:read"},
				types.ProfilePolicy{Identity: "karman", Capability: "recipes:read"},
				types.ProfilePolicy{Identity: "neumann", Capability: "secrets:read"},
			))
		})
	})
}
