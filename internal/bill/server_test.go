package bill

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/prajwal9924/bill-reader-vision-buddy/internal/extract"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/scanning"
)

// multipartUpload builds a multipart body with one file part.
func multipartUpload(field, filename string, data []byte) (*bytes.Buffer, string) {
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	part, err := writer.CreateFormFile(field, filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return &b, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		scanner     *mockScanner
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		scanner = newMockScanner()
		service = NewService(scanner)
		auth = BasicAuth{}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleScanBill", func() {
		When("upload succeeds", func() {
			It("should return status OK with the extraction", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var result ScanResult
				Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
				Expect(result.FullText).To(Equal("ACME HARDWARE\nDate: 03/14/2024\nTotal: $12.50\n"))
				Expect(result.Date).To(HaveValue(Equal("03/14/2024")))
				Expect(result.Total).To(HaveValue(Equal("12.50")))
				Expect(result.Merchant).To(HaveValue(Equal("ACME HARDWARE")))
			})

			It("should set CORS headers", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			})
		})

		When("the extractors found nothing", func() {
			BeforeEach(func() {
				scanner.result = &extract.Result{FullText: "illegible smudge"}
			})

			It("should return null for the missing fields", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				raw, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				var payload map[string]any
				Expect(json.Unmarshal(raw, &payload)).To(Succeed())
				Expect(payload["full_text"]).To(Equal("illegible smudge"))
				Expect(payload).To(HaveKeyWithValue("date", BeNil()))
				Expect(payload).To(HaveKeyWithValue("total", BeNil()))
				Expect(payload).To(HaveKeyWithValue("merchant", BeNil()))
			})
		})

		When("the upload cannot be decoded", func() {
			BeforeEach(func() {
				scanner.scanErr = fmt.Errorf("%w: no recognizable format", scanning.ErrDecode)
			})

			It("should return status Bad Request", func() {
				body, contentType := multipartUpload("file", "bill.txt", []byte("plain text"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				raw, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(raw)).To(ContainSubstring("Unreadable file"))
			})
		})

		When("recognition fails", func() {
			BeforeEach(func() {
				scanner.scanErr = fmt.Errorf("%w: tesseract missing", scanning.ErrRecognize)
			})

			It("should return status Bad Gateway", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			})
		})

		When("scanning fails some other way", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("disk on fire")
			})

			It("should return status Internal Server Error", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		When("no file part is sent", func() {
			It("should return status Bad Request", func() {
				body, contentType := multipartUpload("document", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				raw, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(raw)).To(ContainSubstring("No file"))
			})
		})

		When("the body is not multipart", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", "text/plain", bytes.NewBufferString("hello"))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("request method is GET", func() {
			It("should return status Method Not Allowed", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scans")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			})
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			server = NewServerWithMux(service, auth, http.NewServeMux())
			setupServer()
		})

		When("no credentials are provided", func() {
			It("should return status Unauthorized", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				resp, err := http.Post(ghttpServer.URL()+"/api/scans", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Bill Scanner"))
			})
		})

		When("wrong credentials are provided", func() {
			It("should return status Unauthorized", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/scans", body)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", contentType)
				credentials := base64.StdEncoding.EncodeToString([]byte("user:wrong"))
				req.Header.Set("Authorization", "Basic "+credentials)

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("valid credentials are provided", func() {
			It("should return status OK", func() {
				body, contentType := multipartUpload("file", "bill.jpg", []byte("fake image data"))
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/scans", body)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", contentType)
				credentials := base64.StdEncoding.EncodeToString([]byte("user:pass"))
				req.Header.Set("Authorization", "Basic "+credentials)

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})

	Describe("CORS preflight", func() {
		It("should answer OPTIONS without hitting the handler", func() {
			req, err := http.NewRequest("OPTIONS", ghttpServer.URL()+"/api/scans", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		})
	})
})
