// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/api/utils"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/tcs"
)

type Staking struct {
	engine    *engine.Engine
	logsLimit uint64
}

func New(eng *engine.Engine, logsLimit uint64) *Staking {
	return &Staking{eng, logsLimit}
}

func parseAmount(v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, utils.BadRequest(errors.New("amount: required"))
	}
	return (*big.Int)(v), nil
}

func (s *Staking) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status, err := s.engine.Status()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ConvertStatus(status))
}

func (s *Staking) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := tcs.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := s.engine.Account(*addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ConvertAccount(acc))
}

func (s *Staking) handleGetQueue(w http.ResponseWriter, _ *http.Request) error {
	entries, err := s.engine.PayoutQueue()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ConvertEntries(entries))
}

func (s *Staking) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}
	if err := s.engine.Deposit(body.Caller, body.Account, value); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}
	entry, err := s.engine.Withdraw(body.Caller, body.Account, value)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &Entry{
		ID:        uint64(entry.ID),
		Recipient: entry.Recipient,
		Amount:    amount(entry.Amount),
	})
}

func (s *Staking) handleClaimRewards(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	claimed, err := s.engine.ClaimRewards(body.Caller, body.Account)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &Claimed{amount(claimed)})
}

func (s *Staking) handleClaimIncome(w http.ResponseWriter, req *http.Request) error {
	var body IncomeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}
	dist, err := s.engine.ClaimIncome(body.Caller, value)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, ConvertDistribution(dist))
}

func (s *Staking) handleClaimIScore(w http.ResponseWriter, _ *http.Request) error {
	dist, err := s.engine.ClaimIScore()
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, ConvertDistribution(dist))
}

func (s *Staking) handleAccrueIScore(w http.ResponseWriter, req *http.Request) error {
	var body IncomeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}
	if err := s.engine.AccrueIScore(body.Caller, value); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (s *Staking) handleAdvance(w http.ResponseWriter, req *http.Request) error {
	var body AdvanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	height, err := s.engine.Advance(body.Caller, body.Blocks)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"height": height})
}

func (s *Staking) handlePayout(w http.ResponseWriter, _ *http.Request) error {
	paid, err := s.engine.PayoutFunds()
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, ConvertEntries(paid))
}

// parseFilter reads the common history query values.
func (s *Staking) parseFilter(req *http.Request) (*logdb.Range, *logdb.Options, logdb.Order, error) {
	query := req.URL.Query()

	var rng *logdb.Range
	if query.Has("from") || query.Has("to") {
		from, err := utils.ParseUint64(query.Get("from"), 0)
		if err != nil {
			return nil, nil, "", utils.BadRequest(errors.WithMessage(err, "from"))
		}
		to, err := utils.ParseUint64(query.Get("to"), 0)
		if err != nil {
			return nil, nil, "", utils.BadRequest(errors.WithMessage(err, "to"))
		}
		rng = &logdb.Range{From: from, To: to}
	}

	offset, err := utils.ParseUint64(query.Get("offset"), 0)
	if err != nil {
		return nil, nil, "", utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	limit, err := utils.ParseUint64(query.Get("limit"), s.logsLimit)
	if err != nil {
		return nil, nil, "", utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > s.logsLimit {
		return nil, nil, "", utils.BadRequest(errors.Errorf("limit: exceeds maximum %d", s.logsLimit))
	}

	order := logdb.ASC
	switch query.Get("order") {
	case "", "asc":
	case "desc":
		order = logdb.DESC
	default:
		return nil, nil, "", utils.BadRequest(errors.New("order: must be asc or desc"))
	}
	return rng, &logdb.Options{Offset: offset, Limit: limit}, order, nil
}

func (s *Staking) handleGetPayouts(w http.ResponseWriter, req *http.Request) error {
	rng, opts, order, err := s.parseFilter(req)
	if err != nil {
		return err
	}
	filter := &logdb.PayoutFilter{Range: rng, Options: opts, Order: order}
	if r := req.URL.Query().Get("recipient"); r != "" {
		addr, err := tcs.ParseAddress(r)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "recipient"))
		}
		filter.Recipient = addr
	}

	payouts, err := s.engine.PayoutHistory(req.Context(), filter)
	if err != nil {
		if errors.Is(err, engine.ErrNoHistory) {
			return utils.HTTPError(err, http.StatusNotImplemented)
		}
		return err
	}
	return utils.WriteJSON(w, ConvertPayouts(payouts))
}

func (s *Staking) handleGetDistributions(w http.ResponseWriter, req *http.Request) error {
	rng, opts, order, err := s.parseFilter(req)
	if err != nil {
		return err
	}
	dists, err := s.engine.Distributions(req.Context(), &logdb.DistributionFilter{Range: rng, Options: opts, Order: order})
	if err != nil {
		if errors.Is(err, engine.ErrNoHistory) {
			return utils.HTTPError(err, http.StatusNotImplemented)
		}
		return err
	}
	return utils.WriteJSON(w, ConvertDistributions(dists))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("GET /staking/status").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStatus))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/queue").
		Methods(http.MethodGet).
		Name("GET /staking/queue").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetQueue))
	sub.Path("/deposit").
		Methods(http.MethodPost).
		Name("POST /staking/deposit").
		HandlerFunc(utils.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /staking/claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimRewards))
	sub.Path("/income").
		Methods(http.MethodPost).
		Name("POST /staking/income").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimIncome))
	sub.Path("/iscore/claim").
		Methods(http.MethodPost).
		Name("POST /staking/iscore/claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimIScore))
	sub.Path("/iscore/accrue").
		Methods(http.MethodPost).
		Name("POST /staking/iscore/accrue").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAccrueIScore))
	sub.Path("/advance").
		Methods(http.MethodPost).
		Name("POST /staking/advance").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAdvance))
	sub.Path("/payout").
		Methods(http.MethodPost).
		Name("POST /staking/payout").
		HandlerFunc(utils.WrapHandlerFunc(s.handlePayout))
	sub.Path("/history/payouts").
		Methods(http.MethodGet).
		Name("GET /staking/history/payouts").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPayouts))
	sub.Path("/history/distributions").
		Methods(http.MethodGet).
		Name("GET /staking/history/distributions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetDistributions))
}
