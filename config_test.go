package accessgate_test

import (
	"context"
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-logr/logr"
	goredis "github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/supremind/accessgate"
	"github.com/supremind/accessgate/ledger/memory"
	ledger "github.com/supremind/accessgate/ledger/redis"
	. "github.com/supremind/accessgate/types"
)

var _ = Describe("environment config", func() {
	var (
		server *miniredis.Miniredis
		cctx   context.Context
		cancel context.CancelFunc
	)

	setenv := func(kv map[string]string) {
		for k, v := range kv {
			Expect(os.Setenv("GATETEST_"+k, v)).To(Succeed())
		}
	}

	BeforeEach(func() {
		var e error
		server, e = miniredis.Run()
		Expect(e).To(Succeed())
		cctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
		server.Close()
		for _, k := range []string{"OWNER", "ADMINS", "REDIS_ADDR", "REDIS_PREFIX", "REDIS_TIMEOUT", "LOG_VERBOSITY"} {
			_ = os.Unsetenv("GATETEST_" + k)
		}
	})

	It("should require an owner", func() {
		_, e := LoadEnv("GATETEST")
		Expect(e).To(HaveOccurred())
	})

	It("should fill defaults", func() {
		setenv(map[string]string{"OWNER": "alice", "ADMINS": "bob,carol"})

		cfg, e := LoadEnv("GATETEST")
		Expect(e).To(Succeed())
		Expect(cfg.Owner).To(Equal("alice"))
		Expect(cfg.Admins).To(Equal([]string{"bob", "carol"}))
		Expect(cfg.RedisAddr).To(BeEmpty())
		Expect(cfg.RedisPrefix).To(Equal("accessgate"))
		Expect(cfg.RedisTimeout.Seconds()).To(BeNumerically("==", 5))
	})

	It("should build an in-memory gate without redis", func() {
		setenv(map[string]string{"OWNER": "alice", "ADMINS": "bob,carol,bob"})

		g, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()))
		Expect(e).To(Succeed())
		Expect(g.Owner()).To(Equal(Identity("alice")))
		Expect(g.Admins()).To(Equal([]Identity{"alice", "bob", "carol"}))
	})

	It("should keep credits in memory without redis", func() {
		setenv(map[string]string{"OWNER": "alice"})
		credits := memory.New(logr.Discard())
		Expect(credits.Deposit("erin", 10)).To(Succeed())

		derived, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()))
		Expect(e).To(Succeed())
		rcpt, e := derived.Pay(WithCall(cctx, NewCall("erin")), Admin, 0)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeTrue())

		given, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()), WithLedger(credits))
		Expect(e).To(Succeed())
		call, e := credits.Attach("erin", 10)
		Expect(e).To(Succeed())
		rcpt, e = given.Pay(WithCall(cctx, call), Admin, 4)
		Expect(e).To(Succeed())
		Expect(rcpt.Consumed).To(Equal(Credit(4)))
		Expect(credits.Balance("erin")).To(Equal(Credit(6)))
	})

	It("should fail on unreachable redis", func() {
		setenv(map[string]string{"OWNER": "alice", "REDIS_ADDR": "127.0.0.1:1", "REDIS_TIMEOUT": "200ms"})

		_, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()))
		Expect(e).To(HaveOccurred())
	})

	It("should share roles and credits through redis", func() {
		setenv(map[string]string{"OWNER": "alice", "ADMINS": "bob", "REDIS_ADDR": server.Addr(), "REDIS_PREFIX": "gatetest"})
		first, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()))
		Expect(e).To(Succeed())

		setenv(map[string]string{"OWNER": "dave"})
		second, e := NewFromEnv(cctx, "GATETEST", WithLogger(logr.Discard()))
		Expect(e).To(Succeed())
		Expect(second.Owner()).To(Equal(Identity("alice")))
		Expect(second.Admins()).To(Equal([]Identity{"alice", "bob"}))

		Expect(first.AddAdmins(WithCaller(cctx, "bob"), "carol")).To(Succeed())
		Eventually(second.Admins).Should(Equal([]Identity{"alice", "bob", "carol"}))

		Expect(first.Grant(WithCaller(cctx, "alice"), "erin", "read")).To(Succeed())
		Eventually(func() bool { return second.Can("erin", "read") }).Should(BeTrue())

		client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
		defer client.Close()
		credits := ledger.New(client, ledger.WithPrefix("gatetest"))
		Expect(credits.Deposit(cctx, "erin", 50)).To(Succeed())
		call, e := credits.Attach(cctx, "erin", 20)
		Expect(e).To(Succeed())

		rcpt, e := second.Pay(WithCall(cctx, call), Admin, 15)
		Expect(e).To(Succeed())
		Expect(rcpt.Paid).To(BeTrue())
		Expect(credits.Balance(cctx, "erin")).To(Equal(Credit(35)))
		Expect(credits.Collected(cctx)).To(Equal(Credit(15)))
	})
})
