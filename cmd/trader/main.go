package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/account"
	"github.com/assist-by/stopguard/internal/config"
	"github.com/assist-by/stopguard/internal/dashboard"
	"github.com/assist-by/stopguard/internal/display"
	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange/binance"
	"github.com/assist-by/stopguard/internal/logging"
	"github.com/assist-by/stopguard/internal/metrics"
	"github.com/assist-by/stopguard/internal/notification"
	"github.com/assist-by/stopguard/internal/notification/discord"
	"github.com/assist-by/stopguard/internal/scheduler"
	"github.com/assist-by/stopguard/internal/trading"
)

func main() {
	// 명령줄 플래그 정의
	var opts cliOptions
	flag.StringVar(&opts.action, "action", "watch", "buy | buysl | protect | sell | cancel | cancel-all | quote | symbols | watch")
	flag.StringVar(&opts.symbol, "symbol", "", "거래 심볼 (예: BTCUSDT)")
	flag.StringVar(&opts.pct, "pct", "", "가용 quote 잔고 중 사용할 비율 (%)")
	flag.StringVar(&opts.trigger, "trigger", "", "스탑 트리거 비율 (%, 기본값 SL_TRIGGER_PCT)")
	flag.StringVar(&opts.limit, "limit", "", "스탑 리밋 비율 (%, 기본값 트리거 + SL_LIMIT_OFFSET_PCT)")
	flag.StringVar(&opts.filter, "filter", "", "symbols 액션의 검색어 (3글자 이상부터 적용)")
	flag.BoolVar(&opts.yes, "yes", false, "리밋이 트리거보다 얕아도 확인 없이 진행")

	// 플래그 파싱
	flag.Parse()

	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 로그 설정
	log, err := logging.New(logging.Config{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
		// 대시보드 화면을 깨뜨리지 않도록 watch 모드에서는 콘솔에 쓰지 않음
		Quiet: opts.action == "watch",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "로거 생성 실패: %v\n", err)
		os.Exit(1)
	}

	// 종료 시그널 처리
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, log); err != nil {
		if errors.Is(err, trading.ErrUnprotectedPosition) {
			fmt.Fprintln(os.Stderr, "⚠️ 매수는 체결되었지만 보호 주문이 없습니다. 즉시 확인하세요.")
		}
		fmt.Fprintf(os.Stderr, "[%s] %v\n", trading.KindOf(err), err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions, cfg *config.Config, log *logrus.Logger) error {
	// 메트릭 설정
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.App.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.App.MetricsAddr, Handler: metrics.Handler(registry)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Warn("메트릭 서버 종료")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	notifier := newNotifier(cfg)

	// 바이낸스 클라이언트 생성
	clientOpts := []binance.ClientOption{
		binance.WithTimeout(cfg.Binance.Timeout),
		binance.WithTestnet(cfg.Binance.UseTestnet),
	}
	if cfg.Binance.BaseURL != "" {
		clientOpts = append(clientOpts, binance.WithBaseURL(cfg.Binance.BaseURL))
	}
	client := binance.NewClient(cfg.Binance.APIKey, cfg.Binance.SecretKey, clientOpts...)

	// 바이낸스 서버와 시간 동기화
	if err := client.SyncTime(ctx); err != nil {
		return fmt.Errorf("바이낸스 서버 시간 동기화 실패: %w", err)
	}
	if cfg.Binance.UseTestnet {
		log.Warn("테스트넷 모드로 실행 중입니다. 실제 자산은 사용되지 않습니다.")
		if err := notifier.SendInfo("⚠️ 테스트넷 모드로 실행 중입니다. 실제 자산은 사용되지 않습니다."); err != nil {
			log.WithError(err).Warn("시작 알림 전송 실패")
		}
	}

	orchOpts := []trading.Option{
		trading.WithLogger(log),
		trading.WithMetrics(m),
		trading.WithQuoteAsset(cfg.App.QuoteAsset),
	}

	var stream *binance.PriceStream
	symbol := domain.NormalizeSymbol(opts.symbol)
	if opts.action == "watch" && cfg.App.LiveStream && symbol != "" {
		stream = binance.NewPriceStream(
			[]string{symbol},
			binance.WithStreamTestnet(cfg.Binance.UseTestnet),
			binance.WithStreamLogger(log),
		)
		orchOpts = append(orchOpts, trading.WithPriceSource(stream))
	}

	orch := trading.NewOrchestrator(client, notifier, orchOpts...)

	switch opts.action {
	case "watch":
		return watch(ctx, cfg, log, orch, stream, symbol)

	case "quote":
		pct, err := parseDecimal("pct", opts.pct)
		if err != nil {
			return err
		}
		preview, err := orch.Preview(ctx, symbol, pct)
		if err != nil {
			return err
		}
		printPreview(os.Stdout, orch.Valuator().Quote(), preview)
		return nil

	case "symbols":
		symbols, err := orch.Valuator().QuoteSymbols(ctx)
		if err != nil {
			return err
		}
		printSymbols(os.Stdout, account.FilterSymbols(symbols, opts.filter))
		return nil
	}

	cmd, err := buildCommand(opts, stopDefaults{
		triggerPct:     cfg.Trading.TriggerPct,
		limitOffsetPct: cfg.Trading.LimitOffsetPct,
	})
	if err != nil {
		return err
	}
	if trigger, limit, ok := stopPctsOf(cmd); ok {
		if !confirmShallowLimit(trigger, limit, opts.yes, os.Stdin, os.Stdout) {
			fmt.Println("취소했습니다.")
			return nil
		}
	}

	res, err := orch.Execute(ctx, cmd)
	printResult(os.Stdout, res)
	return err
}

// newNotifier는 웹훅이 하나라도 설정되어 있으면 Discord 클라이언트를, 아니면 Nop을 반환합니다
func newNotifier(cfg *config.Config) notification.Notifier {
	d := cfg.Discord
	if d.TradeWebhook == "" && d.ErrorWebhook == "" && d.InfoWebhook == "" {
		return notification.Nop{}
	}
	return discord.NewClient(d.TradeWebhook, d.ErrorWebhook, d.InfoWebhook, discord.WithTimeout(10*time.Second))
}

// watch는 잔고/가격 갱신 작업과 대시보드를 실행합니다
func watch(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, orch *trading.Orchestrator, stream *binance.PriceStream, symbol string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := display.NewStore(cfg.App.QuoteAsset, symbol)

	if stream != nil {
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("가격 스트림 종료")
			}
		}()
	}

	schedulers := []*scheduler.Scheduler{
		scheduler.NewScheduler(cfg.App.BalanceRefresh,
			&display.BalanceTask{Store: store, Reader: orch},
			scheduler.WithLogger(log), scheduler.WithImmediateRun(true)),
		scheduler.NewScheduler(cfg.App.PriceRefresh,
			&display.PriceTask{Store: store, Reader: orch},
			scheduler.WithLogger(log), scheduler.WithImmediateRun(true)),
	}
	for _, s := range schedulers {
		go func(s *scheduler.Scheduler) {
			if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("스케줄러 종료")
			}
		}(s)
	}
	defer func() {
		for _, s := range schedulers {
			s.Stop()
		}
	}()

	p := tea.NewProgram(dashboard.New(store, time.Second, cancel), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("대시보드 실행 실패: %w", err)
	}
	return nil
}
