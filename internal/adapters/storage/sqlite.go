package storage

// sqlite.go: almacenamiento ligero del historial de señales.
//
// Estrategia:
//   - `cycles`: resumen por ciclo (total, mejor score, horizonte). Siempre 1 fila.
//   - `signals`: UNA fila por item (UPSERT), con first_seen/last_seen.
//   - Cache en memoria: la fila completa solo se reescribe si la señal cambió
//     (>= 5% en score o distinta acción); si no, solo se refresca last_seen.
//   - `offers`: las ofertas abiertas de la sesión de juego, una por slot.
//   - Prune automático al arrancar: cycles > 30d, signals no vistas en 14d.
//
// Los timestamps se guardan como unix millis para que los rangos se comparen
// numéricamente.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen ligero por ciclo de scan
CREATE TABLE IF NOT EXISTS cycles (
    id         TEXT    PRIMARY KEY,
    scanned_at INTEGER NOT NULL,
    total      INTEGER NOT NULL DEFAULT 0,
    best_score REAL    NOT NULL DEFAULT 0,
    horizon    INTEGER NOT NULL DEFAULT 0,
    risk       TEXT    NOT NULL DEFAULT ''
);

-- Última señal de cada item, sin duplicados
CREATE TABLE IF NOT EXISTS signals (
    item_id     INTEGER PRIMARY KEY,
    item_name   TEXT    NOT NULL,
    action      TEXT    NOT NULL,
    score       REAL    NOT NULL DEFAULT 0,
    confidence  REAL    NOT NULL DEFAULT 0,
    insta_buy   INTEGER NOT NULL DEFAULT 0,
    insta_sell  INTEGER NOT NULL DEFAULT 0,
    margin      INTEGER NOT NULL DEFAULT 0,
    roi         REAL    NOT NULL DEFAULT 0,
    volume      INTEGER NOT NULL DEFAULT 0,
    buy_limit   INTEGER NOT NULL DEFAULT 0,
    recovery    REAL    NOT NULL DEFAULT 0,
    first_seen  INTEGER NOT NULL,
    last_seen   INTEGER NOT NULL
);

-- Ofertas abiertas, una por slot del exchange
CREATE TABLE IF NOT EXISTS offers (
    slot            INTEGER PRIMARY KEY,
    id              TEXT    NOT NULL,
    item_id         INTEGER NOT NULL,
    item_name       TEXT    NOT NULL,
    buy_price       INTEGER NOT NULL,
    sell_price      INTEGER NOT NULL,
    quantity        INTEGER NOT NULL,
    quantity_filled INTEGER NOT NULL DEFAULT 0,
    is_buy          INTEGER NOT NULL DEFAULT 1,
    created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at   ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_sig_last    ON signals(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_sig_score   ON signals(score DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour // ciclos: 30 días
	retentionSigs   = 14 * 24 * time.Hour // señales: 14 días
	scoreChangePct  = 0.05                // 5% de cambio en score → reescribir
	touchBatch      = 500                 // ids por UPDATE de last_seen
)

// cachedState es el último estado guardado de la señal de un item.
type cachedState struct {
	action domain.SignalAction
	score  float64
}

// SQLiteStorage implementa ports.Storage y ports.OfferStorage usando SQLite
// (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[int]cachedState // itemID → estado guardado
	mu    sync.Mutex
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[int]cachedState),
	}
	s.pruneOld(context.Background())
	s.warmCache(context.Background())
	return s, nil
}

// SaveScan persiste el resumen del ciclo, reescribe las señales que
// cambiaron respecto al ciclo anterior (caché en memoria) y refresca
// last_seen de todas las demás.
func (s *SQLiteStorage) SaveScan(ctx context.Context, report domain.CycleReport) error {
	if len(report.Signals) == 0 {
		return nil
	}

	now := report.StartedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	changed, unchanged := s.splitChanged(report.Signals)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	// 1. Resumen del ciclo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (id, scanned_at, total, best_score, horizon, risk) VALUES (?, ?, ?, ?, ?, ?)`,
		report.CycleID, now.UnixMilli(), len(report.Signals), bestScore(report.Signals),
		report.Config.TimeHorizonMinutes, report.Config.RiskTolerance.String(),
	); err != nil {
		return fmt.Errorf("storage.SaveScan: insert cycle: %w", err)
	}

	// 2. Upsert completo de las señales que cambiaron
	if err := upsertSignals(ctx, tx, changed, now); err != nil {
		return err
	}

	// 3. Las que no cambiaron solo actualizan last_seen
	if err := touchSignals(ctx, tx, unchanged, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveScan: commit: %w", err)
	}

	s.remember(changed)
	return nil
}

func upsertSignals(ctx context.Context, tx *sql.Tx, signals []domain.MarketSignal, now time.Time) error {
	if len(signals) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals
			(item_id, item_name, action, score, confidence, insta_buy, insta_sell,
			 margin, roi, volume, buy_limit, recovery, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			item_name  = excluded.item_name,
			action     = excluded.action,
			score      = excluded.score,
			confidence = excluded.confidence,
			insta_buy  = excluded.insta_buy,
			insta_sell = excluded.insta_sell,
			margin     = excluded.margin,
			roi        = excluded.roi,
			volume     = excluded.volume,
			buy_limit  = excluded.buy_limit,
			recovery   = excluded.recovery,
			last_seen  = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: prepare: %w", err)
	}
	defer stmt.Close()

	for _, sig := range signals {
		if _, err := stmt.ExecContext(ctx,
			sig.ItemID,
			sig.ItemName,
			string(sig.Action),
			sig.OpportunityScore,
			sig.Confidence,
			sig.InstaBuyPrice,
			sig.InstaSellPrice,
			sig.MarginAfterTax,
			sig.ROIPercent,
			sig.Volume24h,
			sig.BuyLimit,
			sig.AvgRecoveryTimeMinutes,
			now.UnixMilli(), // first_seen: ignorado en ON CONFLICT
			now.UnixMilli(), // last_seen
		); err != nil {
			return fmt.Errorf("storage.SaveScan: upsert item %d: %w", sig.ItemID, err)
		}
	}
	return nil
}

// touchSignals actualiza last_seen en lotes de touchBatch ids.
func touchSignals(ctx context.Context, tx *sql.Tx, signals []domain.MarketSignal, now time.Time) error {
	for start := 0; start < len(signals); start += touchBatch {
		batch := signals[start:min(start+touchBatch, len(signals))]

		args := make([]any, 0, len(batch)+1)
		args = append(args, now.UnixMilli())
		for _, sig := range batch {
			args = append(args, sig.ItemID)
		}

		query := `UPDATE signals SET last_seen = ? WHERE item_id IN (?` +
			strings.Repeat(", ?", len(batch)-1) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("storage.SaveScan: touch last_seen: %w", err)
		}
	}
	return nil
}

// GetHistory devuelve la última señal guardada de cada item cuyo last_seen
// está en el rango dado. Ordenadas por score desc.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.MarketSignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, item_name, action, score, confidence, insta_buy, insta_sell,
		       margin, roi, volume, buy_limit, recovery, last_seen
		FROM signals
		WHERE last_seen BETWEEN ? AND ?
		ORDER BY score DESC, item_id ASC
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var signals []domain.MarketSignal
	for rows.Next() {
		var sig domain.MarketSignal
		var action string
		var lastSeen int64

		if err := rows.Scan(
			&sig.ItemID,
			&sig.ItemName,
			&action,
			&sig.OpportunityScore,
			&sig.Confidence,
			&sig.InstaBuyPrice,
			&sig.InstaSellPrice,
			&sig.MarginAfterTax,
			&sig.ROIPercent,
			&sig.Volume24h,
			&sig.BuyLimit,
			&sig.AvgRecoveryTimeMinutes,
			&lastSeen,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		sig.Action = domain.SignalAction(action)
		sig.Timestamp = time.UnixMilli(lastSeen).UTC()
		sig.SpreadPercent = domain.SpreadPercent(sig.InstaBuyPrice, sig.InstaSellPrice)
		signals = append(signals, sig)
	}

	return signals, rows.Err()
}

// CycleCount devuelve cuántos ciclos hay registrados.
func (s *SQLiteStorage) CycleCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.CycleCount: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// splitChanged separa las señales que cambiaron respecto al estado en caché
// de las que no. No toca la caché: eso se hace tras el commit.
func (s *SQLiteStorage) splitChanged(signals []domain.MarketSignal) (changed, unchanged []domain.MarketSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sig := range signals {
		if prev, ok := s.cache[sig.ItemID]; ok &&
			prev.action == sig.Action &&
			relChange(prev.score, sig.OpportunityScore) < scoreChangePct {
			unchanged = append(unchanged, sig)
			continue
		}
		changed = append(changed, sig)
	}
	return changed, unchanged
}

// remember guarda en caché el estado ya persistido.
func (s *SQLiteStorage) remember(signals []domain.MarketSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sig := range signals {
		s.cache[sig.ItemID] = cachedState{action: sig.Action, score: sig.OpportunityScore}
	}
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	now := time.Now().UTC()
	s.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, now.Add(-retentionCycles).UnixMilli())
	s.db.ExecContext(ctx, `DELETE FROM signals WHERE last_seen < ?`, now.Add(-retentionSigs).UnixMilli())
}

// warmCache precarga la caché desde la DB al arrancar, evitando escrituras
// redundantes en el primer ciclo tras un reinicio.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, action, score FROM signals`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var id int
		var action string
		var score float64
		if rows.Scan(&id, &action, &score) == nil {
			s.cache[id] = cachedState{action: domain.SignalAction(action), score: score}
		}
	}
}

// bestScore devuelve el mejor score del ciclo.
func bestScore(signals []domain.MarketSignal) float64 {
	var best float64
	for _, s := range signals {
		best = math.Max(best, s.OpportunityScore)
	}
	return best
}

// relChange devuelve el cambio relativo entre dos valores (0.0 – ∞).
func relChange(old, new float64) float64 {
	if old == 0 {
		return 1.0 // forzar escritura si antes era 0
	}
	return math.Abs(new-old) / math.Abs(old)
}
