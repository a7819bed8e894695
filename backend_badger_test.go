package jobboard_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/VsevolodSauta/jobboard"
)

var _ = Describe("BadgerBackend", func() {
	BackendTestSuite(func() (jobboard.Backend, func()) {
		tmpDir, err := os.MkdirTemp("", "jobboard_badger_*")
		Expect(err).NotTo(HaveOccurred())

		backend, err := jobboard.NewBadgerBackend(tmpDir, testLogger(), nil)
		Expect(err).NotTo(HaveOccurred())

		return backend, func() {
			_ = backend.Close()
			_ = os.RemoveAll(tmpDir)
		}
	})

	Describe("with the msgpack codec", func() {
		BackendTestSuite(func() (jobboard.Backend, func()) {
			backend, err := jobboard.NewInMemoryBadgerBackend(testLogger(), &jobboard.MsgpackCodec{})
			Expect(err).NotTo(HaveOccurred())
			return backend, func() { _ = backend.Close() }
		})
	})

	It("should keep records across reopen", func() {
		tmpDir, err := os.MkdirTemp("", "jobboard_badger_reopen_*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(tmpDir)
		ctx := context.Background()

		backend, err := jobboard.NewBadgerBackend(tmpDir, testLogger(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(backend.SaveJobs(ctx, []*jobboard.JobRecord{sampleRecord(5, jobboard.Pos(5, 5, 0))})).To(Succeed())
		Expect(backend.Close()).To(Succeed())

		reopened, err := jobboard.NewBadgerBackend(tmpDir, testLogger(), nil)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()
		count, err := reopened.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("should refuse work after Close", func() {
		backend, err := jobboard.NewInMemoryBadgerBackend(testLogger(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(backend.Close()).To(Succeed())
		Expect(backend.Close()).To(Succeed())

		_, err = backend.Count(context.Background())
		Expect(err).To(MatchError(jobboard.ErrBackendClosed))
	})
})
