package httpapi

import (
	"stratbench/internal/backtest"
	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/news"
	"stratbench/internal/store"
	"stratbench/pkg/stratbench"
)

// Conversions from internal values to the wire types shared with
// pkg/stratbench. The SDK package owns the wire contract; handlers convert
// at the boundary so internal types never leak into responses.

func toSignal(s domain.Signal) stratbench.Signal {
	return stratbench.Signal{
		Timestamp:  s.Timestamp,
		Action:     string(s.Action),
		Confidence: s.Confidence,
		Reason:     s.Reason,
		Price:      s.Price,
		Quantity:   s.Quantity,
	}
}

func toSnapshots(snaps []indicators.Snapshot) []stratbench.IndicatorSnapshot {
	out := make([]stratbench.IndicatorSnapshot, len(snaps))
	for i, s := range snaps {
		out[i] = stratbench.IndicatorSnapshot{
			Timestamp:     s.Timestamp,
			Open:          s.Open,
			High:          s.High,
			Low:           s.Low,
			Close:         s.Close,
			Volume:        s.Volume,
			SMA10:         s.SMA10,
			SMA20:         s.SMA20,
			SMA50:         s.SMA50,
			EMA12:         s.EMA12,
			EMA26:         s.EMA26,
			RSI:           s.RSI,
			MACD:          s.MACD,
			MACDSignal:    s.MACDSignal,
			MACDHistogram: s.MACDHistogram,
			BBUpper:       s.BBUpper,
			BBMiddle:      s.BBMiddle,
			BBLower:       s.BBLower,
			VWAP:          s.VWAP,
			ATR:           s.ATR,
			StochK:        s.StochK,
			StochD:        s.StochD,
		}
	}
	return out
}

func toBacktestResult(r *backtest.Result) *stratbench.BacktestResult {
	trades := make([]stratbench.Trade, len(r.Trades))
	for i, t := range r.Trades {
		trades[i] = stratbench.Trade{
			EntryTime:  t.EntryTime,
			EntryPrice: t.EntryPrice,
			ExitTime:   t.ExitTime,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			Side:       string(t.Side),
			PnL:        t.PnL,
			PnLPct:     t.PnLPct,
			Reason:     t.Reason,
		}
	}
	curve := make([]stratbench.EquityPoint, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		curve[i] = stratbench.EquityPoint{
			Timestamp: p.Timestamp,
			Equity:    p.Equity,
			Drawdown:  p.Drawdown,
		}
	}
	return &stratbench.BacktestResult{
		StrategyID:     r.StrategyID,
		Symbol:         r.Symbol,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		InitialCapital: r.InitialCapital,
		FinalCapital:   r.FinalCapital,
		TotalReturn:    r.TotalReturn,
		TotalReturnPct: r.TotalReturnPct,
		SharpeRatio:    r.SharpeRatio,
		SortinoRatio:   r.SortinoRatio,
		MaxDrawdown:    r.MaxDrawdown,
		MaxDrawdownPct: r.MaxDrawdownPct,
		TotalTrades:    r.TotalTrades,
		WinningTrades:  r.WinningTrades,
		LosingTrades:   r.LosingTrades,
		WinRate:        r.WinRate,
		AvgWin:         r.AvgWin,
		AvgLoss:        r.AvgLoss,
		ProfitFactor:   r.ProfitFactor,
		Trades:         trades,
		EquityCurve:    curve,
	}
}

func toSummaries(rows []store.ResultSummary) []stratbench.BacktestSummary {
	out := make([]stratbench.BacktestSummary, len(rows))
	for i, r := range rows {
		out[i] = stratbench.BacktestSummary{
			ID:             r.ID,
			StrategyID:     r.StrategyID,
			Symbol:         r.Symbol,
			StartDate:      r.StartDate,
			EndDate:        r.EndDate,
			TotalReturnPct: r.TotalReturnPct,
			SharpeRatio:    r.SharpeRatio,
			MaxDrawdownPct: r.MaxDrawdownPct,
			TotalTrades:    r.TotalTrades,
			WinRate:        r.WinRate,
			CreatedAt:      r.CreatedAt,
		}
	}
	return out
}

func toNewsSignals(signals []news.NewsSignal) []stratbench.NewsSignal {
	out := make([]stratbench.NewsSignal, len(signals))
	for i, s := range signals {
		out[i] = stratbench.NewsSignal{
			Symbol:         s.Symbol,
			Timestamp:      s.Timestamp,
			SentimentScore: s.SentimentScore,
			SentimentLabel: s.SentimentLabel,
			NewsCount:      s.NewsCount,
			VolumeScore:    s.VolumeScore,
			Action:         s.Action,
			Confidence:     s.Confidence,
			Reason:         s.Reason,
		}
	}
	return out
}

func toForwardResult(r *news.ForwardTestResult) *stratbench.ForwardTestResult {
	trades := make([]stratbench.SimulatedTrade, len(r.SimulatedTrades))
	for i, t := range r.SimulatedTrades {
		trades[i] = stratbench.SimulatedTrade{
			Symbol:         t.Symbol,
			Action:         t.Action,
			EntryPrice:     t.EntryPrice,
			ExitPrice:      t.ExitPrice,
			PnL:            t.PnL,
			PnLDollars:     t.PnLDollars,
			SentimentScore: t.SentimentScore,
		}
	}
	return &stratbench.ForwardTestResult{
		SignalDate:       r.SignalDate,
		TradeDate:        r.TradeDate,
		Signals:          toNewsSignals(r.Signals),
		SimulatedTrades:  trades,
		CumulativeReturn: r.CumulativeReturn,
		TotalTrades:      r.TotalTrades,
		WinningTrades:    r.WinningTrades,
	}
}
