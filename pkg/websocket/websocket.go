package websocketPkg

import (
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const defaultFaceDetectionURL = "ws://localhost:8000/api/v1/face/ws"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type faceRequest struct {
	ImageBase64 string `json:"image_base64"`
	Orientation int    `json:"orientation"`
}

type faceBox struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	HasSmile       bool    `json:"has_smile"`
	LeftEyeClosed  bool    `json:"left_eye_closed"`
	RightEyeClosed bool    `json:"right_eye_closed"`
	Score          float64 `json:"score"`
}

type faceResponse struct {
	Faces       []faceBox `json:"faces"`
	ImageWidth  float64   `json:"image_width"`
	ImageHeight float64   `json:"image_height"`
	Error       string    `json:"error,omitempty"`
}

type webSocketClient struct {
	url          string
	log          *logrus.Logger
	conn         *websocket.Conn
	mu           sync.Mutex
	roundTrip    sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func FaceDetectionURL() string {
	url := os.Getenv("AI_FACE_DETECTION_URL")
	if url == "" {
		url = defaultFaceDetectionURL
	}
	return url
}

func NewFaceDetector(url string, log *logrus.Logger) detector.IFaceDetector {
	client := &webSocketClient{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground()

	return client
}

func (c *webSocketClient) Name() string {
	return detector.BackendRemote
}

func (c *webSocketClient) connectInBackground() {
	if _, err := c.ensureConnected(); err != nil {
		c.log.Warn(fmt.Sprintf("Initial connection to face detection failed: %v. Will retry on demand.", err))
	} else {
		c.log.Info("Successfully connected to face detection service")
	}
}

// Ready reports whether a connection to the face detection service is open.
func (c *webSocketClient) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *webSocketClient) ensureConnected() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dial(); err != nil {
			return nil, err
		}
	}

	return c.conn, nil
}

// dial must be called with c.mu held.
func (c *webSocketClient) dial() error {
	if c.url == "" {
		return fmt.Errorf("URL for face detection not configured")
	}

	c.log.Debug(fmt.Sprintf("Connecting to face detection at %s", c.url))

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warn(fmt.Sprintf("Error sending pong: %v", err))
		}
		return nil
	})

	c.conn = conn

	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warn(fmt.Sprintf("Ping failed for face detection, marking connection as dead: %v", err))
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *webSocketClient) Detect(ctx context.Context, frame []byte, code geometry.OrientationCode) (*entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(faceRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(frame),
		Orientation: int(code),
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding face frame: %w", err)
	}

	c.roundTrip.Lock()
	defer c.roundTrip.Unlock()

	conn, err := c.ensureConnected()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", detector.ErrUnavailable, err)
	}

	readDeadline := time.Now().Add(c.readTimeout)
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(readDeadline) {
		readDeadline = deadline
	}

	c.mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.mu.Unlock()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending face frame: %w", err)
	}

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error reading face message: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var resp faceResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling face response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("face detection service: %s", resp.Error)
	}

	result := &entity.DetectionResult{
		Faces:     make([]entity.FaceFeature, 0, len(resp.Faces)),
		ImageSize: geometry.Size{Width: resp.ImageWidth, Height: resp.ImageHeight},
	}
	for _, f := range resp.Faces {
		result.Faces = append(result.Faces, entity.FaceFeature{
			BoundingBox:    geometry.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			HasSmile:       f.HasSmile,
			LeftEyeClosed:  f.LeftEyeClosed,
			RightEyeClosed: f.RightEyeClosed,
			Score:          f.Score,
		})
	}

	c.log.Debug(fmt.Sprintf("Face detection returned %d faces", len(result.Faces)))

	return result, nil
}
