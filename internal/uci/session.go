package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultReadyTimeout = 4 * time.Second
	searchTimeoutBuffer = 2 * time.Second
)

type Options struct {
	Threads    int
	SkillLevel int
	HashMB     int
}

type Limits struct {
	MoveTimeMillis int
}

// Session owns one engine subprocess speaking the UCI protocol over pipes.
// It is not safe for concurrent searches; the arena drives it sequentially.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
}

func NewSession(ctx context.Context, binaryPath string, opt Options) (*Session, error) {
	if err := validateOptions(opt); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
	}

	if err := s.initialize(ctx, opt); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

type SearchRequest struct {
	FEN    string
	Moves  []string
	Limits Limits
}

// BestMove runs one bounded search and returns the engine's chosen move.
func (s *Session) BestMove(ctx context.Context, req SearchRequest) (string, error) {
	if req.Limits.MoveTimeMillis <= 0 {
		return "", fmt.Errorf("no search limit specified")
	}

	if err := s.send(buildPositionCommand(req.FEN, req.Moves)); err != nil {
		return "", fmt.Errorf("send position: %w", err)
	}
	if err := s.send("go movetime " + strconv.Itoa(req.Limits.MoveTimeMillis) + "\n"); err != nil {
		return "", fmt.Errorf("send go: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout(req.Limits))
	defer cancel()

	for {
		line, err := s.readLine(searchCtx)
		if err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		if !strings.HasPrefix(line, "bestmove") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 || parts[1] == "(none)" {
			return "", fmt.Errorf("engine returned no best move: %q", line)
		}
		return strings.ToLower(parts[1]), nil
	}
}

func buildPositionCommand(fen string, moves []string) string {
	var sb strings.Builder
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		sb.WriteString("position startpos")
	} else {
		sb.WriteString("position fen ")
		sb.WriteString(fen)
	}
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	sb.WriteString("\n")
	return sb.String()
}

func validateOptions(opt Options) error {
	if opt.SkillLevel < 0 || opt.SkillLevel > 20 {
		return fmt.Errorf("skill level %d out of range 0-20", opt.SkillLevel)
	}
	if opt.HashMB <= 0 {
		return fmt.Errorf("hash size must be > 0: %d", opt.HashMB)
	}
	return nil
}

func searchTimeout(l Limits) time.Duration {
	return time.Duration(l.MoveTimeMillis)*time.Millisecond + searchTimeoutBuffer
}

func (s *Session) EnsureReady(ctx context.Context) error {
	readyCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(readyCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (s *Session) NewGame(ctx context.Context) error {
	if err := s.send("ucinewgame\n"); err != nil {
		return fmt.Errorf("send ucinewgame: %w", err)
	}
	return s.EnsureReady(ctx)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin != nil {
		_, _ = io.WriteString(s.stdin, "quit\n")
		s.stdin.Close()
	}

	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}

	if s.cmd != nil {
		return s.cmd.Wait()
	}
	return nil
}

func (s *Session) initialize(ctx context.Context, opt Options) error {
	initCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	if err := s.awaitToken(initCtx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	if err := s.applyOptions(opt); err != nil {
		return err
	}

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(initCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}

	return nil
}

func (s *Session) applyOptions(opt Options) error {
	threadCount := opt.Threads
	if threadCount <= 0 {
		threadCount = 1
	}
	cmds := []string{
		fmt.Sprintf("setoption name Threads value %d\n", threadCount),
		fmt.Sprintf("setoption name Hash value %d\n", opt.HashMB),
		fmt.Sprintf("setoption name Skill Level value %d\n", opt.SkillLevel),
		"setoption name Move Overhead value 100\n",
	}
	for _, cmd := range cmds {
		if err := s.send(cmd); err != nil {
			return fmt.Errorf("apply options: %w", err)
		}
	}
	return nil
}

func (s *Session) send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.stdin, msg)
	return err
}

func (s *Session) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := s.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
