package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger_service/internal/apperr"
	"ledger_service/internal/testutil"
)

const testSecret = "tx-secret"

const (
	countTxQuery    = "SELECT count\\(\\*\\) FROM `transaction` WHERE transaction_id = \\?"
	openAcctExec    = "INSERT INTO `account` .* ON DUPLICATE KEY UPDATE"
	lockAcctQuery   = "SELECT \\* FROM `account` WHERE id = \\? .*FOR UPDATE"
	updateAcctExec  = "UPDATE `account` SET `amount`=amount \\+ \\? WHERE id = \\? AND user_id = \\?"
	insertTxExec    = "INSERT INTO `transaction`"
	readBalanceStmt = "SELECT `amount` FROM `account` WHERE id = \\?"
)

func signedRequest(txID string, accountID, userID uint, amount float64) PaymentRequest {
	return PaymentRequest{
		TransactionID: txID,
		AccountID:     accountID,
		UserID:        userID,
		Amount:        amount,
		Signature:     Sign(accountID, amount, txID, userID, testSecret),
	}
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "amount"})
}

func expectUnseen(mock sqlmock.Sqlmock, txID string) {
	mock.ExpectQuery(countTxQuery).WithArgs(txID).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
}

// expectExistingAccount expects the ignored open attempt followed by the row lock
func expectExistingAccount(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectExec(openAcctExec).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lockAcctQuery).WillReturnRows(rows)
}

func TestApplyPaymentUpdatesExistingAccount(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t1")
	expectExistingAccount(mock, accountRows().AddRow(1, 1, 100.0))
	mock.ExpectExec(updateAcctExec).WithArgs(50.0, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(readBalanceStmt).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(150.0))
	mock.ExpectCommit()

	res, err := p.ApplyPayment(context.Background(), signedRequest("t1", 1, 1, 50))
	require.NoError(t, err)
	assert.Equal(t, ProcessedMessage, res.Message)
	assert.Equal(t, 150.0, res.NewBalance)
	assert.False(t, res.AccountOpened)
}

func TestApplyPaymentOpensAccountSeededAtAmount(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t-new")
	mock.ExpectExec(openAcctExec).WithArgs(7, 2, -25.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(readBalanceStmt).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(-25.5))
	mock.ExpectCommit()

	res, err := p.ApplyPayment(context.Background(), signedRequest("t-new", 7, 2, -25.5))
	require.NoError(t, err)
	assert.Equal(t, -25.5, res.NewBalance)
	assert.True(t, res.AccountOpened)
}

func TestApplyPaymentUnknownUser(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t5")
	mock.ExpectExec(openAcctExec).
		WillReturnError(&mysqldriver.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	mock.ExpectRollback()

	_, err := p.ApplyPayment(context.Background(), signedRequest("t5", 8, 99, 1))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Unknown user", apperr.MessageOf(err))
}

func TestApplyPaymentRejectsBadSignatureWithoutTouchingStore(t *testing.T) {
	gdb, _ := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	req := signedRequest("t1", 1, 1, 50)
	req.Amount = 5000

	res, err := p.ApplyPayment(context.Background(), req)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrInvalidSignature)
}

func TestApplyPaymentRejectsEmptyTransactionID(t *testing.T) {
	gdb, _ := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	_, err := p.ApplyPayment(context.Background(), signedRequest("  ", 1, 1, 50))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyPaymentRejectsDuplicate(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(countTxQuery).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	res, err := p.ApplyPayment(context.Background(), signedRequest("t1", 1, 1, 50))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrDuplicateTransaction)
}

func TestApplyPaymentConcurrentDuplicateLosesOnPrimaryKey(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t1")
	expectExistingAccount(mock, accountRows().AddRow(1, 1, 50.0))
	mock.ExpectExec(updateAcctExec).WithArgs(50.0, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 't1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	_, err := p.ApplyPayment(context.Background(), signedRequest("t1", 1, 1, 50))
	assert.Equal(t, apperr.DuplicateTransaction, apperr.KindOf(err))
}

// Both submissions saw no account. The winner opened it; this one found the row on
// its ignored insert, updated it after the winner committed and lost on the record.
func TestApplyPaymentConcurrentDuplicateOnNewAccount(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t-race")
	expectExistingAccount(mock, accountRows().AddRow(9, 1, 20.0))
	mock.ExpectExec(updateAcctExec).WithArgs(20.0, 9, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 't-race' for key 'PRIMARY'"})
	mock.ExpectRollback()

	res, err := p.ApplyPayment(context.Background(), signedRequest("t-race", 9, 1, 20))
	assert.Nil(t, res)
	assert.Equal(t, apperr.DuplicateTransaction, apperr.KindOf(err))
}

func TestApplyPaymentRejectsForeignAccount(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t9")
	expectExistingAccount(mock, accountRows().AddRow(3, 2, 10.0))
	mock.ExpectRollback()

	_, err := p.ApplyPayment(context.Background(), signedRequest("t9", 3, 1, 5))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyPaymentStorageFailureRollsBack(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	p := NewProcessor(gdb, testSecret, nil, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t1")
	expectExistingAccount(mock, accountRows().AddRow(1, 1, 50.0))
	mock.ExpectExec(updateAcctExec).WithArgs(50.0, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	res, err := p.ApplyPayment(context.Background(), signedRequest("t1", 1, 1, 50))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "lock wait timeout exceeded")
}

func TestApplyPaymentInvalidatesCachedListings(t *testing.T) {
	gdb, mock := testutil.NewMockDB(t)
	rdb, rmock := redismock.NewClientMock()
	p := NewProcessor(gdb, testSecret, rdb, nil)

	mock.ExpectBegin()
	expectUnseen(mock, "t2")
	expectExistingAccount(mock, accountRows().AddRow(1, 1, 50.0))
	mock.ExpectExec(updateAcctExec).WithArgs(10.0, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTxExec).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(readBalanceStmt).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(60.0))
	mock.ExpectCommit()
	rmock.ExpectDel("accounts:user:1", "transactions:user:1").SetVal(2)

	res, err := p.ApplyPayment(context.Background(), signedRequest("t2", 1, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.NewBalance)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "accounts:user:42", AccountsCacheKey(42))
	assert.Equal(t, "transactions:user:42", TransactionsCacheKey(42))
}
