package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voidshard/torque/pkg/api/http/common"
)

// do sends the request and unmarshals the response into out
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	} else if resp.Body == nil {
		return fmt.Errorf("no response body with status code %d", resp.StatusCode)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 { // some error code, assume message is error message
		return statusError(resp.StatusCode, body)
	}

	return json.Unmarshal(body, out)
}

// statusError wraps the torque error the status code stands for, if any
func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if e := common.ErrorFor(code); e != nil {
		return fmt.Errorf("%w bad status code %d, returned %s", e, code, msg)
	}
	return fmt.Errorf("bad status code %d, returned %s", code, msg)
}
