package validator

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"

	"examplecpi/internal/logging"
)

// Version is reported by getVersion.
const Version = "1.18.26-examplecpi"

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      any               `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

// Server serves a Ledger over Solana JSON-RPC.
type Server struct {
	ledger *Ledger
	log    logging.Logger
}

// NewServer returns an http.Handler for ledger. A nil log discards.
func NewServer(ledger *Ledger, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	return &Server{ledger: ledger, log: log.Named("validator")}
}

// Ledger returns the served ledger.
func (s *Server) Ledger() *Ledger { return s.ledger }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.write(w, response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "Parse error"}})
		return
	}
	result, rerr := s.dispatch(&req)
	if rerr != nil {
		s.log.Debug("rpc error", logging.String("method", req.Method), logging.Int("code", rerr.Code),
			logging.String("message", rerr.Message))
	} else {
		s.log.Debug("rpc", logging.String("method", req.Method))
	}
	s.write(w, response{JSONRPC: "2.0", Result: result, Error: rerr, ID: req.ID})
}

func (s *Server) write(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("write response", logging.Err(err))
	}
}

func (s *Server) dispatch(req *request) (any, *rpcError) {
	if req.JSONRPC != "2.0" || req.Method == "" {
		return nil, &rpcError{Code: codeInvalidRequest, Message: "Invalid request"}
	}
	switch req.Method {
	case "getLatestBlockhash":
		return s.getLatestBlockhash()
	case "sendTransaction":
		return s.sendTransaction(req.Params)
	case "getSignatureStatuses":
		return s.getSignatureStatuses(req.Params)
	case "getAccountInfo":
		return s.getAccountInfo(req.Params)
	case "getBalance":
		return s.getBalance(req.Params)
	case "requestAirdrop":
		return s.requestAirdrop(req.Params)
	case "getVersion":
		return rpc.GetVersionResult{SolanaCore: Version}, nil
	case "getHealth":
		return "ok", nil
	case "getSlot":
		return s.ledger.Slot(), nil
	}
	return nil, &rpcError{Code: codeMethodNotFound, Message: "Method not found"}
}

func invalidParams(msg string) *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: "Invalid params: " + msg}
}

func param(params []json.RawMessage, i int, out any) *rpcError {
	if i >= len(params) {
		return invalidParams("missing parameter")
	}
	if err := json.Unmarshal(params[i], out); err != nil {
		return invalidParams(err.Error())
	}
	return nil
}

func pubkeyParam(params []json.RawMessage, i int) (solana.PublicKey, *rpcError) {
	var s string
	if err := param(params, i, &s); err != nil {
		return solana.PublicKey{}, err
	}
	pub, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, invalidParams("invalid pubkey " + s)
	}
	return pub, nil
}

func (s *Server) context() rpc.RPCContext {
	return rpc.RPCContext{Context: rpc.Context{Slot: s.ledger.Slot()}}
}

func (s *Server) getLatestBlockhash() (any, *rpcError) {
	s.ledger.mu.Lock()
	slot, hash := s.ledger.slot, s.ledger.blockhash
	s.ledger.mu.Unlock()
	return rpc.GetLatestBlockhashResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: slot}},
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: slot + maxRecentBlockhashes,
		},
	}, nil
}

type sendOptions struct {
	Encoding      string `json:"encoding"`
	SkipPreflight bool   `json:"skipPreflight"`
}

func (s *Server) sendTransaction(params []json.RawMessage) (any, *rpcError) {
	var encoded string
	if err := param(params, 0, &encoded); err != nil {
		return nil, err
	}
	var opts sendOptions
	if len(params) > 1 {
		if err := param(params, 1, &opts); err != nil {
			return nil, err
		}
	}

	var raw []byte
	var err error
	switch opts.Encoding {
	case "base64":
		raw, err = base64.StdEncoding.DecodeString(encoded)
	case "", "base58":
		raw, err = base58.Decode(encoded)
	default:
		return nil, invalidParams("unsupported encoding " + opts.Encoding)
	}
	if err != nil {
		return nil, invalidParams("failed to decode transaction: " + err.Error())
	}
	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return nil, invalidParams("failed to deserialize transaction: " + err.Error())
	}

	sig, rerr := s.ledger.Submit(tx, opts.SkipPreflight)
	if rerr != nil {
		return nil, rerr
	}
	s.log.Info("transaction", logging.Stringer("signature", sig), logging.Uint64("slot", s.ledger.Slot()))
	return sig.String(), nil
}

func (s *Server) getSignatureStatuses(params []json.RawMessage) (any, *rpcError) {
	var sigs []string
	if err := param(params, 0, &sigs); err != nil {
		return nil, err
	}
	values := make([]*rpc.SignatureStatusesResult, len(sigs))
	for i, str := range sigs {
		sig, err := solana.SignatureFromBase58(str)
		if err != nil {
			return nil, invalidParams("invalid signature " + str)
		}
		st, ok := s.ledger.signatureStatus(sig)
		if !ok {
			continue
		}
		res := &rpc.SignatureStatusesResult{
			Slot:               st.slot,
			Err:                st.err,
			ConfirmationStatus: rpc.ConfirmationStatusType(commitmentLevels[st.level]),
		}
		if st.level < len(commitmentLevels)-1 {
			n := uint64(st.level)
			res.Confirmations = &n
		}
		values[i] = res
	}
	return map[string]any{"context": s.context().Context, "value": values}, nil
}

func (s *Server) getAccountInfo(params []json.RawMessage) (any, *rpcError) {
	pub, rerr := pubkeyParam(params, 0)
	if rerr != nil {
		return nil, rerr
	}
	acc, ok := s.ledger.Account(pub)
	if !ok {
		return map[string]any{"context": s.context().Context, "value": nil}, nil
	}
	return rpc.GetAccountInfoResult{
		RPCContext: s.context(),
		Value: &rpc.Account{
			Lamports:   acc.Lamports,
			Owner:      acc.Owner,
			Data:       rpc.DataBytesOrJSONFromBytes(acc.Data),
			Executable: acc.Executable,
			RentEpoch:  big.NewInt(0),
		},
	}, nil
}

func (s *Server) getBalance(params []json.RawMessage) (any, *rpcError) {
	pub, rerr := pubkeyParam(params, 0)
	if rerr != nil {
		return nil, rerr
	}
	acc, _ := s.ledger.Account(pub)
	return rpc.GetBalanceResult{RPCContext: s.context(), Value: acc.Lamports}, nil
}

func (s *Server) requestAirdrop(params []json.RawMessage) (any, *rpcError) {
	pub, rerr := pubkeyParam(params, 0)
	if rerr != nil {
		return nil, rerr
	}
	var lamports uint64
	if err := param(params, 1, &lamports); err != nil {
		return nil, err
	}
	sig := s.ledger.Airdrop(pub, lamports)
	s.log.Info("airdrop", logging.Stringer("to", pub), logging.Uint64("lamports", lamports))
	return sig.String(), nil
}
