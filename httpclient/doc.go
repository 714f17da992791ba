// Package httpclient provides a small HTTP client with authentication,
// multipart uploads, typed JSON helpers and optional retry.
//
// Transport failures and non-2xx responses are returned as *Error values
// classified by ErrorCode, so callers can map them onto their own error
// model. A non-2xx response is returned alongside its error so callers can
// inspect the body.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth(token),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/v1/audio/transcriptions",
//	    Body: &httpclient.MultipartBody{
//	        Fields: map[string]string{"model": "whisper-1"},
//	        Files:  []httpclient.FileField{{FieldName: "file", FileName: "a.wav", Data: data}},
//	    },
//	})
package httpclient
