package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/harness"
	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/fsnotify/fsnotify"
	"go.bug.st/serial"
)

// serialChannel sends packets as KISS frames over a serial port. Radio links
// lose and corrupt frames on their own; the transport entities recover
// exactly as they do over the simulated link.
type serialChannel struct {
	mu   sync.Mutex
	port serial.Port
}

var _ rdt.Channel = &serialChannel{}

func (sc *serialChannel) Send(packet *rdt.Packet) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, err := sc.port.Write(buildKISSFrame(packet.Encode())); err != nil {
		log.Printf("Serial write failed: %v", err)
	}
}

// readFrames pumps incoming serial bytes through the KISS extractor and
// injects each decoded packet into the executor as an arrival event.
func readFrames(port serial.Port, exec *component.RealTimeExecutor, arrival func(packet *rdt.Packet)) {
	extractor := &frameExtractor{}
	buf := make([]byte, 1024)
	for {
		n, err := port.Read(buf)
		if err != nil {
			log.Fatalf("Serial read failed: %v", err)
		}
		for _, payload := range extractor.Push(buf[:n]) {
			packet, err := rdt.DecodePacket(payload)
			if err != nil {
				log.Printf("Discarding unframeable payload: %v", err)
				continue
			}
			exec.Inject("ctrl.filelink/Arrival", func() {
				arrival(packet)
			})
		}
	}
}

// awaitWriteSettle polls path until its size stops changing between polls, so
// a file still being copied into the outbox is not chunked short. Reports
// false if the file disappears or never settles.
func awaitWriteSettle(path string, poll time.Duration) bool {
	lastSize := int64(-1)
	for attempt := 0; attempt < 60; attempt++ {
		time.Sleep(poll)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
		if info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
	}
	log.Printf("Still growing after %d polls, giving up: %s", 60, path)
	return false
}

func watchOutbox(dir string, enqueue func(path string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Cannot list outbox %s: %v", dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			enqueue(filepath.Join(dir, entry.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Cannot create outbox watcher: %v", err)
	}
	if err := watcher.Add(dir); err != nil {
		log.Fatalf("Cannot watch outbox %s: %v", dir, err)
	}
	log.Printf("Watching outbox: %s", dir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			go func(path string) {
				if awaitWriteSettle(path, 200*time.Millisecond) {
					enqueue(path)
				}
			}(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func main() {
	portName := flag.String("port", "/dev/ttyUSB0", "serial port connected to the TNC")
	baud := flag.Int("baud", 115200, "serial baud rate")
	mode := flag.String("mode", "", "send or recv")
	outbox := flag.String("dir", "outbox", "directory of files to send (send mode)")
	outDir := flag.String("out", "inbox", "directory for received files (recv mode)")
	timeout := flag.Duration("timeout", 2*time.Second, "sender retransmission timeout")
	flag.Parse()

	port, err := serial.Open(*portName, &serial.Mode{BaudRate: *baud})
	if err != nil {
		log.Fatalf("Cannot open serial port %s: %v", *portName, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		log.Fatalf("Cannot set read timeout: %v", err)
	}
	log.Printf("Opened serial port %s at %d baud", *portName, *baud)

	channel := &serialChannel{port: port}
	exec := component.MakeRealTimeExecutor(time.Now().UnixNano())
	stop := make(chan struct{})

	switch *mode {
	case "send":
		var sender *rdt.Sender
		var pending [][]byte
		// fires whenever the sender may have gone idle: an acknowledgment
		// arrived or new chunks were queued
		var senderIdle *component.EventDispatcher
		exec.Setup(func(ctx model.SimContext) {
			senderIdle = component.MakeEventDispatcher(ctx, "ctrl.filelink/SenderIdle")
			timer := harness.MakeRetransmitTimer(ctx, "ctrl.filelink/Retransmit", func() {
				sender.OnTimeout()
			})
			sender = rdt.MakeSender(ctx, channel, timer, *timeout, "Serial")
			senderIdle.Subscribe(func() {
				if !sender.AwaitingAck && len(pending) > 0 {
					if sender.Submit(pending[0]) {
						pending = pending[1:]
					}
				}
			})
		})
		go readFrames(port, exec, func(packet *rdt.Packet) {
			sender.OnPacketArrival(packet)
			senderIdle.DispatchLater()
		})
		go watchOutbox(*outbox, func(path string) {
			messages, err := fileMessages(path)
			if err != nil {
				log.Printf("Cannot read %s: %v", path, err)
				return
			}
			log.Printf("Queueing %s as %d messages", path, len(messages))
			exec.Inject("ctrl.filelink/Enqueue", func() {
				pending = append(pending, messages...)
				senderIdle.DispatchLater()
			})
		})
		exec.Run(stop)

	case "recv":
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			log.Fatalf("Cannot create %s: %v", *outDir, err)
		}
		var receiver *rdt.Receiver
		exec.Setup(func(ctx model.SimContext) {
			receiver = rdt.MakeReceiver(ctx, channel, &fileWriter{outDir: *outDir}, "Serial")
		})
		go readFrames(port, exec, func(packet *rdt.Packet) {
			receiver.OnPacketArrival(packet)
		})
		exec.Run(stop)

	default:
		log.Fatalf("Mode must be 'send' or 'recv', not %q", *mode)
	}
}
