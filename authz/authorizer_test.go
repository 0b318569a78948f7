package authz_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/healthhive/registry/authz"
)

var fieldWorker = map[string]interface{}{
	"Id":              "USR-bhw",
	"Role":            "bhw",
	"AssignedRegions": []string{"Poblacion"},
}

var nurse = map[string]interface{}{
	"Id":              "USR-nurse",
	"Role":            "rhu_nurse",
	"AssignedRegions": []string{"Malaya"},
}

var supervisor = map[string]interface{}{
	"Id":   "USR-supervisor",
	"Role": "supervisor",
}

var admin = map[string]interface{}{
	"Id":   "USR-admin",
	"Role": "admin",
}

var _ = Describe("Request Authorizer", func() {
	var authorizer authz.RequestAuthorizer

	BeforeEach(func() {
		var err error
		authorizer, err = authz.NewRequestAuthorizer(zap.NewNop().Sugar())
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Evaluate policy", func() {
		It("allows anyone to hit the readiness probe", func() {
			input := map[string]interface{}{
				"path":   []string{"ready"},
				"method": "GET",
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("allows field workers to record visits", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "visits"},
				"method": "POST",
				"caller": fieldWorker,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("allows field workers to bulk sync visits", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "visits", "bulk-sync"},
				"method": "POST",
				"caller": fieldWorker,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("prevents unauthenticated requests from recording visits", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "visits"},
				"method": "POST",
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).To(Equal(authz.ErrUnauthorized))
		})

		It("allows nurses to register patients", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "patients"},
				"method": "POST",
				"caller": nurse,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("prevents field workers from deactivating patients", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "patients", "PAT-1750000000-abcd1234"},
				"method": "DELETE",
				"caller": fieldWorker,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).To(Equal(authz.ErrUnauthorized))
		})

		It("allows supervisors to deactivate patients", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "patients", "PAT-1750000000-abcd1234"},
				"method": "DELETE",
				"caller": supervisor,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("allows field workers to view dashboards", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "analytics", "overview"},
				"method": "GET",
				"caller": fieldWorker,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("prevents field workers from exporting reports", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "analytics", "report.xlsx"},
				"method": "GET",
				"caller": fieldWorker,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).To(Equal(authz.ErrUnauthorized))
		})

		It("allows admins to export reports", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "analytics", "report.xlsx"},
				"method": "GET",
				"caller": admin,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})

		It("prevents nurses from listing users", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "users"},
				"method": "GET",
				"caller": nurse,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).To(Equal(authz.ErrUnauthorized))
		})

		It("allows admins to list users", func() {
			input := map[string]interface{}{
				"path":   []string{"api", "users"},
				"method": "GET",
				"caller": admin,
			}
			err := authorizer.EvaluatePolicy(context.Background(), input)
			Expect(err).ToNot(HaveOccurred())
		})
	})
})
